package replication

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus_Incomplete(t *testing.T) {
	err := ToStatus(&IncompleteError{
		Key:    "user:42",
		Owners: []string{"a:1", "b:1", "c:1"},
		Failures: []OwnerFailure{
			{Owner: "b:1", Err: errors.New("connection refused")},
			{Owner: "c:1", Err: errors.New("deadline exceeded")},
		},
	})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Unavailable, st.Code())

	back := FromStatus(err)
	assert.ErrorIs(t, back, ErrReplicationIncomplete)

	var incomplete *IncompleteError
	require.ErrorAs(t, back, &incomplete)
	assert.Equal(t, "user:42", incomplete.Key)
	assert.Equal(t, []string{"a:1", "b:1", "c:1"}, incomplete.Owners)
	assert.Equal(t, []string{"b:1", "c:1"}, incomplete.FailedOwners())
}

func TestToStatus_OtherErrors(t *testing.T) {
	assert.NoError(t, ToStatus(nil))

	err := ToStatus(errors.New("disk on fire"))
	assert.Equal(t, codes.Internal, status.Code(err))

	existing := status.Error(codes.InvalidArgument, "bad")
	assert.Equal(t, existing, ToStatus(existing))
}

func TestFromStatus_PlainUnavailable(t *testing.T) {
	err := status.Error(codes.Unavailable, "connection refused")

	back := FromStatus(err)
	assert.Equal(t, err, back)
	assert.NotErrorIs(t, back, ErrReplicationIncomplete)
}
