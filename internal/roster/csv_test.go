package roster

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/strack-api/internal/models"
)

func TestToCSVQuotesAndRoundTrips(t *testing.T) {
	joined := time.Date(2024, 3, 5, 10, 30, 0, 250*int(time.Millisecond), time.UTC)
	students := []models.Student{
		{ID: "1", Name: "A,B", Email: "a@b.com", Course: "Math", Joined: joined, Age: 20},
		{ID: "2", Name: `Quote "Q" Person`, Email: "q@b.com", Course: "Art History", Joined: joined, Age: 0, ProfileImage: "https://img.test/q.png"},
	}

	out, err := ToCSV(students)
	require.NoError(t, err)

	assert.False(t, strings.HasSuffix(out, "\n"))
	lines := strings.Split(out, "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,email,course,joined,age,profileImage", lines[0])
	assert.Equal(t, `1,"A,B",a@b.com,Math,2024-03-05T10:30:00.250Z,20,`, lines[1])
	assert.Equal(t, `2,"Quote ""Q"" Person",q@b.com,Art History,2024-03-05T10:30:00.250Z,0,https://img.test/q.png`, lines[2])

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "A,B", "a@b.com", "Math", "2024-03-05T10:30:00.250Z", "20", ""}, records[1])
	assert.Equal(t, `Quote "Q" Person`, records[2][1])
}

func TestToCSVPreservesInputOrder(t *testing.T) {
	students := []models.Student{{ID: "z", Name: "Zed"}, {ID: "a", Name: "Ann"}}

	out, err := ToCSV(students)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "z", records[1][0])
	assert.Equal(t, "a", records[2][0])
}

func TestToCSVEmptyHasHeaderOnly(t *testing.T) {
	out, err := ToCSV(nil)
	require.NoError(t, err)

	assert.Equal(t, "id,name,email,course,joined,age,profileImage", out)
}

func TestToCSVMultilineField(t *testing.T) {
	out, err := ToCSV([]models.Student{{ID: "1", Name: "Line\nBreak"}})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Line\nBreak", records[1][1])
}

func TestFormatJoinedConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	joined := time.Date(2024, 1, 1, 7, 0, 0, 0, loc)

	assert.Equal(t, "2024-01-01T00:00:00.000Z", FormatJoined(joined))
}
