// Package audithook is a relay extension that bridges job lifecycle
// events to an audit trail backend.
//
// Every lifecycle hook emits a structured audit event through the
// [Recorder] interface. The extension assigns severity levels (info
// for normal operations, warning for quota denials, critical for
// processing and delivery failures) and rich metadata (user id, file
// name, elapsed time, errors).
//
// # Usage
//
//	relay, err := turniti.New(
//	    turniti.WithExtension(audithook.New(audithook.NewLogRecorder(logger))),
//	    ...
//	)
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionJobFailed,
//	        audithook.ActionDeliveryFailed,
//	    ),
//	)
package audithook
