package server

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Sorchess/picaton-rbac/internal/platform/rbac"
	roledomain "github.com/Sorchess/picaton-rbac/internal/role/domain"
	roleservice "github.com/Sorchess/picaton-rbac/internal/role/service"
	"github.com/Sorchess/picaton-rbac/internal/security"
)

// StatusError maps an engine error to a gRPC status error. Unrecognized errors
// map to Internal with a generic message so internals do not leak to clients.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && status.Code(err) != codes.Unknown {
		return err
	}

	var denied *rbac.PermissionDeniedError
	var inUse *roleservice.RoleInUseError
	switch {
	case errors.Is(err, security.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "missing or invalid authorization")
	case errors.Is(err, rbac.ErrNotAMember):
		return status.Error(codes.PermissionDenied, "not a member of this company")
	case errors.As(err, &denied):
		return status.Error(codes.PermissionDenied, denied.Error())
	case errors.Is(err, roleservice.ErrHierarchyViolation):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, roleservice.ErrRoleNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, roleservice.ErrRoleAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, roleservice.ErrRoleLimitExceeded):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, roleservice.ErrSystemRoleProtected):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &inUse):
		return status.Error(codes.FailedPrecondition, inUse.Error())
	case errors.Is(err, roleservice.ErrUnknownPermission),
		errors.Is(err, roledomain.ErrInvalidName),
		errors.Is(err, roledomain.ErrInvalidColor):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
