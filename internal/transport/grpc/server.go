package grpc

import (
	"context"
	"encoding/json"
	"net"

	"google.golang.org/grpc"

	"packpay/internal/model"
	"packpay/internal/service"
)

const serviceName = "packpay.Ledger"

type ledgerServer interface {
	Purchase(ctx context.Context, req *model.PurchaseRequest) (*PurchaseResponse, error)
	GetBalance(ctx context.Context, req *BalanceRequest) (*BalanceResponse, error)
	Publish(ctx context.Context, req *EventRequest) (*EventResponse, error)
}

// serviceDesc is maintained by hand: the wire format is the JSON codec, so
// there is no generated protobuf to register.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ledgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Purchase", Handler: purchaseHandler},
		{MethodName: "GetBalance", Handler: getBalanceHandler},
		{MethodName: "Publish", Handler: publishHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "packpay/ledger",
}

func purchaseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(model.PurchaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ledgerServer).Purchase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Purchase"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ledgerServer).Purchase(ctx, req.(*model.PurchaseRequest))
	})
}

func getBalanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BalanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ledgerServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetBalance"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ledgerServer).GetBalance(ctx, req.(*BalanceRequest))
	})
}

func publishHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EventRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ledgerServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Publish"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ledgerServer).Publish(ctx, req.(*EventRequest))
	})
}

type Server struct {
	svc  service.LedgerService
	srv  *grpc.Server
	addr string
}

func NewServer(addr string, svc service.LedgerService) *Server {
	s := &Server{svc: svc, addr: addr, srv: grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))}
	s.srv.RegisterService(&serviceDesc, s)
	return s
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.srv.Serve(lis)
}

func (s *Server) Stop(ctx context.Context) error {
	s.srv.GracefulStop()
	return nil
}

func (s *Server) Purchase(ctx context.Context, req *model.PurchaseRequest) (*PurchaseResponse, error) {
	res, err := s.svc.Purchase(ctx, *req)
	if err != nil {
		return &PurchaseResponse{Success: false, ErrorMessage: err.Error()}, nil
	}
	return &PurchaseResponse{Success: true, Result: res}, nil
}

func (s *Server) GetBalance(ctx context.Context, req *BalanceRequest) (*BalanceResponse, error) {
	bal, err := s.svc.GetBalance(ctx, req.Address)
	if err != nil {
		return &BalanceResponse{Success: false, ErrorMessage: err.Error()}, nil
	}
	return &BalanceResponse{Success: true, Balance: bal}, nil
}

// Publish is the worker path when the bus provider is gRPC: remote peers
// push committed-purchase events here and the server syncs the audit table.
func (s *Server) Publish(ctx context.Context, req *EventRequest) (*EventResponse, error) {
	if req.Topic != "purchases.created" {
		return &EventResponse{Success: true}, nil
	}
	var event model.PurchaseEvent
	if err := json.Unmarshal(req.Payload, &event); err != nil {
		return &EventResponse{Success: false}, nil
	}
	if err := s.svc.SyncPurchase(ctx, event); err != nil {
		return &EventResponse{Success: false}, nil
	}
	return &EventResponse{Success: true}, nil
}
