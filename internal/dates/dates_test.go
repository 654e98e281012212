package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeYYMMDD_PivotYear(t *testing.T) {
	cases := map[string]string{
		"990530": "1999-05-30",
		"250930": "2025-09-30",
		"500101": "1950-01-01",
		"491231": "2049-12-31",
		"000229": "2000-02-29",
	}
	for in, want := range cases {
		got, err := NormalizeYYMMDD(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeYYMMDD_EveryTwoDigitYear(t *testing.T) {
	for yy := 0; yy < 100; yy++ {
		in := twoDigits(yy) + "0615"
		got, err := NormalizeYYMMDD(in)
		require.NoError(t, err)
		if yy >= PivotYear {
			assert.Equal(t, "19"+twoDigits(yy), got[:4])
		} else {
			assert.Equal(t, "20"+twoDigits(yy), got[:4])
		}
	}
}

func TestNormalizeYYMMDD_Rejects(t *testing.T) {
	for _, in := range []string{"", "25093", "2509300", "25O930"} {
		_, err := NormalizeYYMMDD(in)
		assert.Error(t, err, in)
	}
}

func TestNormalizeOrToday(t *testing.T) {
	today := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	got, fellBack := NormalizeOrToday("250930", today)
	assert.Equal(t, "2025-09-30", got)
	assert.False(t, fellBack)

	got, fellBack = NormalizeOrToday("", today)
	assert.Equal(t, "2026-10-15", got)
	assert.True(t, fellBack)
}

func TestCentsToDollars(t *testing.T) {
	assert.Equal(t, "123.45", CentsToDollars(12345))
	assert.Equal(t, "600.00", CentsToDollars(60000))
	assert.Equal(t, "0.05", CentsToDollars(5))
	assert.Equal(t, "0.00", CentsToDollars(0))
	assert.Equal(t, "-1.50", CentsToDollars(-150))
	assert.Equal(t, "10000000.01", CentsToDollars(1000000001))
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
