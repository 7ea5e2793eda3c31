package interceptor

import (
	"context"
	"sort"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/logger"
)

const errorDomain = "aluga.ai"

// backendRetryDelay is the RetryInfo hint sent with BACKEND_ERROR.
const backendRetryDelay = 2 * time.Second

// StatusFromError converts service errors into gRPC statuses. The apperr code
// travels as ErrorInfo.Reason; field errors as a BadRequest detail.
func StatusFromError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	appErr := apperr.As(err)
	if appErr == nil {
		logger.Error("Unhandled error", "error", err)
		return status.Error(codes.Internal, apperr.MetadataFor(apperr.CodeInternal).PublicMessage)
	}

	code := appErr.Code()
	meta := apperr.MetadataFor(code)
	message := appErr.Message()
	if code == apperr.CodeInternal || code == apperr.CodeBackend {
		logger.Error("Request failed", "code", code, "error", err)
		message = meta.PublicMessage
	}

	st := status.New(meta.GRPCCode, message)
	info := &errdetails.ErrorInfo{Reason: string(code), Domain: errorDomain}
	if meta.DetailsAllowed {
		if details, ok := appErr.Details().(map[string]string); ok {
			info.Metadata = details
		}
	}

	details := []protoadapt.MessageV1{info}
	if fields := appErr.FieldErrors(); code == apperr.CodeValidation && len(fields) > 0 {
		details = append(details, badRequest(fields))
	}
	if code == apperr.CodeBackend {
		details = append(details, &errdetails.RetryInfo{RetryDelay: durationpb.New(backendRetryDelay)})
	}
	withDetails, err := st.WithDetails(details...)
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

func badRequest(fields map[string]string) *errdetails.BadRequest {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	br := &errdetails.BadRequest{}
	for _, name := range names {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       name,
			Description: fields[name],
		})
	}
	return br
}

func UnaryErrors() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		return resp, StatusFromError(err)
	}
}

func StreamErrors() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return StatusFromError(handler(srv, ss))
	}
}
