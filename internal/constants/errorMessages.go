package constants

const (
	ErrMsgUnauthorized  = "Unauthorized"
	ErrMsgInvalidBody   = "Invalid request body"
	ErrMsgNoRunRecorded = "No ingest run recorded"
	MsgAlreadyIngested  = "Already ingested today"
	MsgIngestCompleted  = "Ingest completed"
	NotifySuccessPrefix = ":white_check_mark: F3 Region Pages daily ingest completed successfully at"
	NotifyFailurePrefix = ":x: F3 Region Pages daily ingest failed:"
)
