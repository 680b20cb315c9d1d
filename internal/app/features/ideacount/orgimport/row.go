package orgimport

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// Row is one validated import line.
type Row struct {
	Line            int    `col:"-" validate:"-"`
	Code            string `col:"code" validate:"required,max=64"`
	PreRegistration int64  `col:"pre_registration" validate:"min=0"`
	VOSCompleted    int64  `col:"vos_completed" validate:"min=0"`
	GroupFormation  int64  `col:"group_formation" validate:"min=0"`
	IdeaSubmissions int64  `col:"idea_submissions" validate:"min=0"`
}

// Delta returns the counters the row adds.
func (r Row) Delta() models.Metrics {
	return models.Metrics{
		PreRegistration: r.PreRegistration,
		VOSCompleted:    r.VOSCompleted,
		GroupFormation:  r.GroupFormation,
		IdeaSubmissions: r.IdeaSubmissions,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("col")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRow converts a parsed record into a Row and validates it.
func decodeRow(rec tabular.Record) (Row, error) {
	row := Row{
		Line: rec.Line,
		Code: rec.Get("code"),
	}

	targets := []struct {
		col string
		dst *int64
	}{
		{models.MetricPreRegistration, &row.PreRegistration},
		{models.MetricVOSCompleted, &row.VOSCompleted},
		{models.MetricGroupFormation, &row.GroupFormation},
		{models.MetricIdeaSubmissions, &row.IdeaSubmissions},
	}
	for _, t := range targets {
		raw := rec.Get(t.col)
		n, ok := parseCount(raw)
		if !ok {
			return Row{}, &InvalidValueError{Line: rec.Line, Column: t.col, Value: raw}
		}
		*t.dst = n
	}

	if err := validate.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			col := verrs[0].Field()
			return Row{}, &InvalidValueError{Line: rec.Line, Column: col, Value: rec.Get(col)}
		}
		return Row{}, err
	}
	return row, nil
}

// parseCount reads an integer cell. An empty cell is 0. Spreadsheet exports
// sometimes write whole numbers as "12.0", which is accepted.
func parseCount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// falsyRow reports whether every cell of rec is blank or a zero count. Such a
// row carries no code worth looking up and adds nothing, so it is dropped.
func falsyRow(rec tabular.Record) bool {
	if rec.IsEmpty() {
		return true
	}
	for _, v := range rec.Values {
		if n, ok := parseCount(v); !ok || n != 0 {
			return false
		}
	}
	return true
}
