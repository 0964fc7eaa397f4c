package turniti

import "github.com/djoldoshevv/Turniti/id"

// ID is the primary identifier type for all relay entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
