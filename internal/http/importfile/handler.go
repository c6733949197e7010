package importfile

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tradebook/internal/http/httpio"
	"github.com/MrJamesThe3rd/tradebook/internal/importer"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/preview", h.preview)
}

type importResponse struct {
	Imported     int                  `json:"imported"`
	Transactions []*trade.Transaction `json:"transactions"`
}

type conflictResponse struct {
	Imported  []*trade.Transaction `json:"imported"`
	Conflicts []*trade.Transaction `json:"conflicts"`
}

type previewResponse struct {
	Format       importer.Format      `json:"format"`
	Transactions []*trade.Transaction `json:"transactions"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	f, format, err := readUpload(r)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}
	defer f.Close()

	result, err := h.svc.Import(r.Context(), format, f)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	imported := nonNil(result.Imported)

	if len(result.Conflicts) > 0 {
		httpio.JSON(w, http.StatusConflict, conflictResponse{
			Imported:  imported,
			Conflicts: result.Conflicts,
		})

		return
	}

	httpio.JSON(w, http.StatusCreated, importResponse{
		Imported:     len(imported),
		Transactions: imported,
	})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	f, format, err := readUpload(r)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}
	defer f.Close()

	txs, err := h.svc.Parse(r.Context(), format, f)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusOK, previewResponse{Format: format, Transactions: nonNil(txs)})
}

// readUpload opens the multipart field "file". The format comes from the
// "format" field, falling back to the uploaded file's extension.
func readUpload(r *http.Request) (multipart.File, importer.Format, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, "", fmt.Errorf("failed to parse form: %w: %w", trade.ErrValidation, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("file field is required: %w", trade.ErrValidation)
	}

	name := r.FormValue("format")
	if name == "" {
		name = header.Filename
	}

	format, err := importer.ParseFormat(name)
	if err != nil {
		file.Close()
		return nil, "", err
	}

	return file, format, nil
}

func nonNil(txs []*trade.Transaction) []*trade.Transaction {
	if txs == nil {
		return []*trade.Transaction{}
	}

	return txs
}
