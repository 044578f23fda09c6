package submsrvc

// SubmSrvc owns the submission lifecycle: creation, dispatching to
// the execution collaborator, status callbacks and score attachment.
type SubmSrvc struct {
	submRepo SubmRepo
	dataRepo DataRepo
	colRepo  ColumnRepo

	dispatcher Dispatcher
	fanout     FanoutPolicy
}

func NewSubmSrvc(
	submRepo SubmRepo,
	dataRepo DataRepo,
	colRepo ColumnRepo,
	dispatcher Dispatcher,
	fanout FanoutPolicy,
) *SubmSrvc {
	return &SubmSrvc{
		submRepo:   submRepo,
		dataRepo:   dataRepo,
		colRepo:    colRepo,
		dispatcher: dispatcher,
		fanout:     fanout,
	}
}
