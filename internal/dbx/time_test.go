package dbx

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatParseTime_RoundTripUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2024, 5, 17, 21, 4, 5, 123456789, loc)

	s := FormatTime(in)
	require.Equal(t, "2024-05-17T18:04:05.123456789Z", s)

	out, err := ParseTime(s)
	require.NoError(t, err)
	require.True(t, in.Equal(out))
	require.Equal(t, time.UTC, out.Location())
}

func TestParseTime_Invalid(t *testing.T) {
	_, err := ParseTime("yesterday")
	require.Error(t, err)
}

func TestNullTime(t *testing.T) {
	require.False(t, FormatNullTime(nil).Valid)

	got, err := ParseNullTime(sql.NullString{})
	require.NoError(t, err)
	require.Nil(t, got)

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ns := FormatNullTime(&now)
	require.True(t, ns.Valid)

	back, err := ParseNullTime(ns)
	require.NoError(t, err)
	require.True(t, now.Equal(*back))
}

func TestNullableScalars(t *testing.T) {
	require.False(t, NullInt64(nil).Valid)
	require.Nil(t, Int64Ptr(sql.NullInt64{}))
	v := int64(5)
	require.Equal(t, int64(5), *Int64Ptr(NullInt64(&v)))

	require.False(t, NullFloat64(nil).Valid)
	require.Nil(t, Float64Ptr(sql.NullFloat64{}))
	f := 12.5
	require.Equal(t, 12.5, *Float64Ptr(NullFloat64(&f)))

	require.False(t, NullString(nil).Valid)
	require.Nil(t, StringPtr(sql.NullString{}))
	s := "17\""
	require.Equal(t, s, *StringPtr(NullString(&s)))
}
