package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-user/app/dto"
	"github.com/vibast-solutions/ms-go-user/app/service"
	"github.com/vibast-solutions/ms-go-user/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type UserServer struct {
	userAuthService service.UserAuthService
}

func NewUserServer(userAuthService service.UserAuthService) *UserServer {
	return &UserServer{userAuthService: userAuthService}
}

func (s *UserServer) ValidateToken(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	token := strings.TrimSpace(req.GetValue())
	if token == "" {
		logrus.Debug("Validate token failed: empty token (grpc)")
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	result := s.userAuthService.Introspect(token)
	return introspectionStruct(result)
}

// GetProfile expects BearerUnaryInterceptor to have attached the caller's claims.
func (s *UserServer) GetProfile(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		logrus.Warn("Get profile failed: missing claims in context (grpc)")
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	profileReq := &types.ProfileRequest{ID: req.GetValue()}
	if err := profileReq.Validate(); err != nil {
		logrus.WithField("id", req.GetValue()).Debug("Get profile validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id := profileReq.ID
	if id == "" {
		id = claims.UserID
	}

	logrus.WithFields(logrus.Fields{
		"user_id": claims.UserID,
		"id":      id,
	}).Info("Get profile request received (grpc)")
	profile, err := s.userAuthService.Profile(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("id", id).Warn("Get profile failed: user not found (grpc)")
			return nil, status.Error(codes.NotFound, "user not found")
		}
		logrus.WithError(err).WithField("id", id).Error("Get profile failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return profileStruct(profile)
}

func introspectionStruct(result *dto.TokenIntrospection) (*structpb.Struct, error) {
	fields := map[string]any{"valid": result.Valid}
	if result.Valid {
		fields["id"] = result.ID
		fields["username"] = result.Username
		fields["email"] = result.Email
	}
	return newStruct(fields)
}

func profileStruct(profile *dto.Profile) (*structpb.Struct, error) {
	return newStruct(map[string]any{
		"id":        profile.ID,
		"email":     profile.Email,
		"username":  profile.Username,
		"firstName": optional(profile.FirstName),
		"lastName":  optional(profile.LastName),
	})
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode grpc response")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

func optional(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
