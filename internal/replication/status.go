package replication

import (
	"errors"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ReasonReplicationIncomplete is the google.rpc.ErrorInfo reason attached
	// to Set failures caused by unreachable owners.
	ReasonReplicationIncomplete = "REPLICATION_INCOMPLETE"
	errorDomain                 = "replcache"
)

// ToStatus converts a coordinator error into a gRPC status error.
// Incomplete replication becomes Unavailable with an ErrorInfo detail so
// clients can tell it apart from their own transport failures.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}

	// Checked first: the per-owner failures are often status errors themselves.
	var incomplete *IncompleteError
	if !errors.As(err, &incomplete) {
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(codes.Unavailable, err.Error())
	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: ReasonReplicationIncomplete,
		Domain: errorDomain,
		Metadata: map[string]string{
			"key":           incomplete.Key,
			"owners":        strings.Join(incomplete.Owners, ","),
			"failed_owners": strings.Join(incomplete.FailedOwners(), ","),
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// FromStatus recovers an *IncompleteError from a status error produced by
// ToStatus. Any other error is returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unavailable {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetReason() != ReasonReplicationIncomplete || info.GetDomain() != errorDomain {
			continue
		}

		md := info.GetMetadata()
		e := &IncompleteError{
			Key:    md["key"],
			Owners: splitList(md["owners"]),
		}
		for _, owner := range splitList(md["failed_owners"]) {
			e.Failures = append(e.Failures, OwnerFailure{Owner: owner, Err: errors.New(st.Message())})
		}
		return e
	}
	return err
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
