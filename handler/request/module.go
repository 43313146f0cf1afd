package request

import (
	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cqrs"
)

// Module exports this package's handler bindings for bootstrap discovery.
func Module() bootstrap.Module {
	return bootstrap.Module{
		Name: "request",
		Register: func(r *cqrs.HandlerRegistry) error {
			if err := cqrs.RegisterCommand[SubmitRequestCommand, *SubmitRequestHandler](r, NewSubmitRequestHandler); err != nil {
				return err
			}
			if err := cqrs.RegisterCommand[CancelRequestCommand, *CancelRequestHandler](r, NewCancelRequestHandler); err != nil {
				return err
			}
			if err := cqrs.RegisterCommand[CompleteRequestCommand, *CompleteRequestHandler](r, NewCompleteRequestHandler); err != nil {
				return err
			}
			if err := cqrs.RegisterCommand[ReturnMachinesCommand, *ReturnMachinesHandler](r, NewReturnMachinesHandler); err != nil {
				return err
			}
			if err := cqrs.RegisterQuery[GetRequestQuery, *GetRequestHandler](r, NewGetRequestHandler); err != nil {
				return err
			}
			if err := cqrs.RegisterQuery[GetRequestStatusQuery, *GetRequestStatusHandler](r, NewGetRequestStatusHandler); err != nil {
				return err
			}
			return cqrs.RegisterQuery[ListActiveRequestsQuery, *ListActiveRequestsHandler](r, NewListActiveRequestsHandler)
		},
	}
}
