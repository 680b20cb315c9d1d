// internal/app/features/ideacount/import.go
package ideacount

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/orgimport"
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/app/system/apiresp"
	"github.com/dalemusser/ideatrack/internal/app/system/telemetry"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// importSummary is the response payload of a successful import.
type importSummary struct {
	Applied int `json:"applied"`
	Dropped int `json:"dropped"`
	Skipped int `json:"skipped"`
}

// HandleImport handles POST /idea-count/import. The multipart field "file"
// holds a CSV or XLSX sheet whose rows are added onto the organizations named
// by their code column.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, tabular.MaxUploadSize)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Import(), h.Log, "idea count import")
	defer cancel()

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			telemetry.ImportFailed(telemetry.FailureUnreadable)
			apiresp.Failure(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 5 MB.")
			return
		}
		apiresp.Failure(w, http.StatusBadRequest, "File not found.")
		return
	}
	defer file.Close()

	batch, err := tabular.Parse(header.Filename, file, h.Parse)
	if err != nil {
		telemetry.ImportFailed(telemetry.FailureUnreadable)
		h.Log.Info("import file unreadable",
			zap.String("filename", header.Filename),
			zap.Error(err))
		switch {
		case errors.Is(err, tabular.ErrTooManyRows):
			apiresp.Failure(w, http.StatusBadRequest, fmt.Sprintf("File has too many rows. Maximum is %d.", h.Parse.MaxRows))
		case errors.Is(err, tabular.ErrUnsupportedFormat):
			apiresp.Failure(w, http.StatusBadRequest, "Unsupported file format. Upload a .csv or .xlsx file.")
		default:
			apiresp.Failure(w, http.StatusBadRequest, "Unable to read file.")
		}
		return
	}
	if len(batch.Rows) == 0 {
		telemetry.ImportFailed(telemetry.FailureEmpty)
		apiresp.Failure(w, http.StatusBadRequest, "Empty csv file.")
		return
	}

	res, err := h.Importer.Import(ctx, batch)
	h.recordImport(r, header.Filename, len(batch.Rows), res, err)
	if err != nil {
		status, msg := h.importFailure(err)
		apiresp.Failure(w, status, msg)
		return
	}

	apiresp.Success(w, fmt.Sprintf("Successfully imported %d rows.", res.Applied), importSummary{
		Applied: res.Applied,
		Dropped: res.Dropped,
		Skipped: res.Skipped,
	})
}

// importFailure maps a reconciler error to the status and message the client
// sees. Cell text from the upload is stripped of markup before it is echoed
// back.
func (h *Handler) importFailure(err error) (int, string) {
	var (
		mc *orgimport.MissingColumnError
		uc *orgimport.UnknownCodeError
		iv *orgimport.InvalidValueError
	)
	switch {
	case errors.As(err, &mc):
		return http.StatusBadRequest, fmt.Sprintf("%s does not exist in the file.", mc.Column)
	case errors.As(err, &uc):
		return http.StatusBadRequest, fmt.Sprintf("Organization with code %s does not exist.", h.stripTags(uc.Code))
	case errors.As(err, &iv):
		return http.StatusBadRequest, fmt.Sprintf("Invalid value %q for %s on line %d.", h.stripTags(iv.Value), iv.Column, iv.Line)
	}
	// Persistence failures are logged by the reconciler; the cause stays server-side.
	return http.StatusInternalServerError, "Error occured while importing data."
}

// stripTags removes HTML from s. The strict policy also entity-escapes what is
// left; the message travels as JSON, so the escaping is undone and a code
// like A&B reads as written.
func (h *Handler) stripTags(s string) string {
	return html.UnescapeString(h.policy.Sanitize(s))
}
