package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	AuthServiceName    = "alugaai.v1.AuthService"
	CatalogServiceName = "alugaai.v1.CatalogService"
	RentalServiceName  = "alugaai.v1.RentalService"
)

type AuthServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	GetCurrentUser(context.Context, *GetCurrentUserRequest) (*GetCurrentUserResponse, error)
}

type CatalogServer interface {
	AddItem(context.Context, *AddItemRequest) (*ItemResponse, error)
	GetItem(context.Context, *GetItemRequest) (*ItemResponse, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*ItemResponse, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*DeleteItemResponse, error)
	SearchItems(context.Context, *SearchItemsRequest) (*ListItemsResponse, error)
	ListMyItems(context.Context, *ListMyItemsRequest) (*ListItemsResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
}

type RentalServer interface {
	CreateRental(context.Context, *CreateRentalRequest) (*RentalResponse, error)
	GetRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	ApproveRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	RejectRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	CancelRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	ActivateRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	CompleteRental(context.Context, *RentalIDRequest) (*RentalResponse, error)
	ListMyRentals(context.Context, *ListMyRentalsRequest) (*ListRentalsResponse, error)
	ListIncomingRequests(context.Context, *ListIncomingRequestsRequest) (*ListRentalsResponse, error)
	ListItemRentals(context.Context, *ListItemRentalsRequest) (*ListRentalsResponse, error)
	WatchRentals(*WatchRentalsRequest, RentalWatchStream) error
}

// RentalWatchStream is the server side of WatchRentals.
type RentalWatchStream interface {
	Send(*WatchRentalsResponse) error
	grpc.ServerStream
}

type rentalWatchStream struct {
	grpc.ServerStream
}

func (s *rentalWatchStream) Send(m *WatchRentalsResponse) error {
	return s.ServerStream.SendMsg(m)
}

// unary builds the method descriptor for a handler method expression such
// as (*AuthHandler).SignUp.
func unary[H any, Req any, Resp any](service, method string, call func(H, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, icpt grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
			}
			if icpt == nil {
				return call(srv.(H), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(H), ctx, req.(*Req))
			}
			return icpt(ctx, in, info, handler)
		},
	}
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "SignUp", AuthServer.SignUp),
		unary(AuthServiceName, "SignIn", AuthServer.SignIn),
		unary(AuthServiceName, "RefreshToken", AuthServer.RefreshToken),
		unary(AuthServiceName, "SignOut", AuthServer.SignOut),
		unary(AuthServiceName, "GetCurrentUser", AuthServer.GetCurrentUser),
	},
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CatalogServiceName, "AddItem", CatalogServer.AddItem),
		unary(CatalogServiceName, "GetItem", CatalogServer.GetItem),
		unary(CatalogServiceName, "UpdateItem", CatalogServer.UpdateItem),
		unary(CatalogServiceName, "DeleteItem", CatalogServer.DeleteItem),
		unary(CatalogServiceName, "SearchItems", CatalogServer.SearchItems),
		unary(CatalogServiceName, "ListMyItems", CatalogServer.ListMyItems),
		unary(CatalogServiceName, "ListCategories", CatalogServer.ListCategories),
	},
}

var RentalServiceDesc = grpc.ServiceDesc{
	ServiceName: RentalServiceName,
	HandlerType: (*RentalServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(RentalServiceName, "CreateRental", RentalServer.CreateRental),
		unary(RentalServiceName, "GetRental", RentalServer.GetRental),
		unary(RentalServiceName, "ApproveRental", RentalServer.ApproveRental),
		unary(RentalServiceName, "RejectRental", RentalServer.RejectRental),
		unary(RentalServiceName, "CancelRental", RentalServer.CancelRental),
		unary(RentalServiceName, "ActivateRental", RentalServer.ActivateRental),
		unary(RentalServiceName, "CompleteRental", RentalServer.CompleteRental),
		unary(RentalServiceName, "ListMyRentals", RentalServer.ListMyRentals),
		unary(RentalServiceName, "ListIncomingRequests", RentalServer.ListIncomingRequests),
		unary(RentalServiceName, "ListItemRentals", RentalServer.ListItemRentals),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchRentals",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(WatchRentalsRequest)
				if err := stream.RecvMsg(in); err != nil {
					return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
				}
				return srv.(RentalServer).WatchRentals(in, &rentalWatchStream{stream})
			},
		},
	},
}
