package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Start: at(10, 0), End: at(11, 0)}

	assert.True(t, a.Overlaps(Interval{Start: at(10, 30), End: at(11, 30)}))
	assert.True(t, a.Overlaps(Interval{Start: at(9, 0), End: at(12, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: at(11, 0), End: at(12, 0)}), "back-to-back")
	assert.False(t, a.Overlaps(Interval{Start: at(9, 0), End: at(10, 0)}), "back-to-back")
}

func TestInterval_Contains(t *testing.T) {
	iv := Interval{Start: at(10, 0), End: at(11, 0)}

	assert.True(t, iv.Contains(at(10, 0)))
	assert.True(t, iv.Contains(at(10, 59)))
	assert.False(t, iv.Contains(at(11, 0)))
	assert.False(t, iv.Contains(at(9, 59)))
}

func TestNewInterval_RejectsEmptyAndInverted(t *testing.T) {
	_, err := NewInterval(at(10, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewInterval(at(11, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	seoul := time.FixedZone("KST", 9*60*60)
	iv, err := NewInterval(time.Date(2024, 1, 1, 19, 0, 0, 0, seoul), time.Date(2024, 1, 1, 20, 0, 0, 0, seoul))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, iv.Start.Location())
	assert.Equal(t, at(10, 0), iv.Start)
}

func TestParseReservationStatus(t *testing.T) {
	s, err := ParseReservationStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, ReservationConfirmed, s)

	_, err = ParseReservationStatus("pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestResource_EffectiveCapacity(t *testing.T) {
	assert.Equal(t, 1, Resource{}.EffectiveCapacity())
	assert.Equal(t, 1, Resource{Capacity: -3}.EffectiveCapacity())
	assert.Equal(t, 26, Resource{Capacity: 26}.EffectiveCapacity())
}

func TestActor_CanManage(t *testing.T) {
	r := Reservation{UserID: "u1"}

	assert.True(t, Actor{UserID: "u1", Role: RoleMember}.CanManage(r))
	assert.False(t, Actor{UserID: "u2", Role: RoleMember}.CanManage(r))
	assert.True(t, Actor{UserID: "u2", Role: RoleAdmin}.CanManage(r))
	assert.False(t, Actor{Role: RoleMember}.CanManage(Reservation{}))
}
