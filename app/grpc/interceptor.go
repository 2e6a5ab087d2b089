package grpc

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-user/app/middleware"
	"github.com/vibast-solutions/ms-go-user/app/service"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type claimsKey struct{}

type accessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

// BearerUnaryInterceptor guards the listed methods with the access token from
// the "authorization" metadata. Other methods pass through untouched.
func BearerUnaryInterceptor(validator accessTokenValidator, protected ...string) gogrpc.UnaryServerInterceptor {
	guarded := make(map[string]struct{}, len(protected))
	for _, method := range protected {
		guarded[method] = struct{}{}
	}

	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if _, ok := guarded[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		tokenString, ok := middleware.BearerToken(authorizationFromMetadata(ctx))
		if !ok {
			logrus.WithField("method", info.FullMethod).Debug("Missing bearer token (grpc)")
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			logrus.WithField("method", info.FullMethod).Debug("Invalid bearer token (grpc)")
			return nil, status.Error(codes.PermissionDenied, "forbidden")
		}

		return handler(context.WithValue(ctx, claimsKey{}, claims), req)
	}
}

func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*service.Claims)
	return claims, ok
}

func authorizationFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
