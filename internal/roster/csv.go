package roster

import (
	"strconv"
	"time"

	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/pkg/export"
)

// Download names for roster exports.
const (
	CSVFilename = "students.csv"
	PDFFilename = "students.pdf"
)

// JoinedLayout renders joined dates as ISO-8601 UTC with milliseconds.
const JoinedLayout = "2006-01-02T15:04:05.000Z"

// CSVHeaders lists the exported columns in declaration order.
var CSVHeaders = []string{"id", "name", "email", "course", "joined", "age", "profileImage"}

// Dataset converts students into an export dataset in the given order.
func Dataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, map[string]string{
			"id":           s.ID,
			"name":         s.Name,
			"email":        s.Email,
			"course":       s.Course,
			"joined":       FormatJoined(s.Joined),
			"age":          strconv.Itoa(s.Age),
			"profileImage": s.ProfileImage,
		})
	}
	return export.Dataset{Headers: CSVHeaders, Rows: rows}
}

// FormatJoined renders t the way exports carry it.
func FormatJoined(t time.Time) string {
	return t.UTC().Format(JoinedLayout)
}

// NewCSVExporter returns the exporter roster downloads use: records separated
// by \r\n with no terminator after the last one.
func NewCSVExporter() *export.CSVExporter {
	return export.NewCSVExporter(export.WithCRLF(), export.WithoutFinalNewline())
}

// ToCSV serialises students, header first, without reordering them.
func ToCSV(students []models.Student) (string, error) {
	out, err := NewCSVExporter().Render(Dataset(students))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
