package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle
// hook and becomes the Action field of the audit event.
const (
	ActionJobAdmitted    = "job.admitted"
	ActionJobCompleted   = "job.completed"
	ActionJobRejected    = "job.rejected"
	ActionJobFailed      = "job.failed"
	ActionAccessDenied   = "access.denied"
	ActionDeliveryFailed = "delivery.failed"
)

// Audit event categories group related actions.
const (
	CategoryJob      = "relay.job"
	CategoryAccess   = "relay.access"
	CategoryDelivery = "relay.delivery"
)

// ResourceJob is the Resource field used in all job audit events.
const ResourceJob = "job"

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionJobAdmitted,
		ActionJobCompleted,
		ActionJobRejected,
		ActionJobFailed,
		ActionAccessDenied,
		ActionDeliveryFailed,
	}
}
