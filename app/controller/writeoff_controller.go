package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"egais-writeoff/models"
	"egais-writeoff/reconcile"
	"egais-writeoff/repository"
	"egais-writeoff/service"
	"egais-writeoff/utils"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// WriteoffController handles HTTP requests for EGAIS write-offs
type WriteoffController struct {
	service         service.WriteoffServiceInterface
	runs            repository.WriteoffRunRepositoryInterface
	archive         service.DriveServiceInterface
	archiveFolderID string
	defaultChatID   int64
	location        *time.Location
	now             func() time.Time
}

// NewWriteoffController creates a new WriteoffController.
// archive may be nil when no Drive archive folder is configured.
func NewWriteoffController(
	svc service.WriteoffServiceInterface,
	runs repository.WriteoffRunRepositoryInterface,
	archive service.DriveServiceInterface,
	archiveFolderID string,
	defaultChatID int64,
	location *time.Location,
) *WriteoffController {
	if location == nil {
		location = time.Local
	}
	return &WriteoffController{
		service:         svc,
		runs:            runs,
		archive:         archive,
		archiveFolderID: archiveFolderID,
		defaultChatID:   defaultChatID,
		location:        location,
		now:             time.Now,
	}
}

// parseDayAndType reads the date (default today) and type (default alcohol) query parameters
func (c *WriteoffController) parseDayAndType(r *http.Request) (time.Time, models.ProductType, error) {
	day := c.now().In(c.location)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := utils.ParseDay(dateStr, c.location)
		if err != nil {
			return time.Time{}, "", errors.New("invalid date format, use YYYY-MM-DD")
		}
		day = parsed
	}

	goodType, err := models.ParseProductType(r.URL.Query().Get("type"))
	if err != nil {
		return time.Time{}, "", errors.New("invalid type, use alcohol, non_alcohol or snack")
	}
	return day, goodType, nil
}

// Send handles POST /admin/writeoff/send?date=YYYY-MM-DD&type=alcohol&chatId=123
// Example response:
// {
//   "id": "0b6f8a3e-5d0c-4f7e-a0a5-2f1b0d9c7e11",
//   "productType": "alcohol",
//   "periodStart": "2026-01-04T00:00:00+03:00",
//   "periodEnd": "2026-01-04T23:59:59+03:00",
//   "status": "ok",
//   "goodsTotal": 42,
//   "unmatchedTotal": 3,
//   "fileName": "Списание_ЕГАИС_2026-01-04.xlsx",
//   "chatId": -1001234567890,
//   "createdAt": "2026-01-05T09:00:00Z"
// }
func (c *WriteoffController) Send(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Send: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ Send: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day, goodType, err := c.parseDayAndType(r)
	if err != nil {
		log.Printf("❌ Send: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chatID := c.defaultChatID
	if chatIDStr := r.URL.Query().Get("chatId"); chatIDStr != "" {
		chatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.Printf("❌ Send: Invalid chatId: %s", chatIDStr)
			http.Error(w, "invalid chatId parameter", http.StatusBadRequest)
			return
		}
	}
	if chatID == 0 {
		log.Printf("❌ Send: chatId is required")
		http.Error(w, "chatId is required (set TELEGRAM_CHAT_ID or pass chatId)", http.StatusBadRequest)
		return
	}

	run, err := c.service.SendWriteoff(r.Context(), chatID, goodType, day)
	if err != nil {
		log.Printf("❌ Send: Error sending write-off: %v", err)
		if errors.Is(err, service.ErrWriteoffNotReady) && run != nil && run.Status == string(reconcile.StatusEmpty) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to send write-off: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Send: Successfully sent write-off run id=%s", run.ID)
	writeJSON(w, "Send", run)
}

// Preview handles GET /admin/writeoff/preview?date=YYYY-MM-DD&type=alcohol
// Example response:
// {
//   "productType": "alcohol",
//   "date": "2026-01-04",
//   "status": "ok",
//   "goods": [
//     {
//       "commercialName": "X Beer",
//       "canonicalName": "Пиво X светлое",
//       "matched": true,
//       "quantity": 5,
//       "price": "250"
//     }
//   ]
// }
func (c *WriteoffController) Preview(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Preview: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ Preview: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day, goodType, err := c.parseDayAndType(r)
	if err != nil {
		log.Printf("❌ Preview: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := c.service.Preview(r.Context(), goodType, day)

	response := models.WriteoffPreviewResponse{
		ProductType: goodType.String(),
		Date:        day.Format(utils.DayLayout),
		Status:      string(result.Status()),
		Goods:       make([]models.ReconciledGoodResponse, 0, len(result.Goods())),
	}
	if reason := result.Reason(); reason != nil {
		response.Reason = reason.Error()
	}
	for _, g := range result.Goods() {
		response.Goods = append(response.Goods, models.ReconciledGoodResponse{
			CommercialName: g.CommercialName,
			CanonicalName:  g.CanonicalName(),
			Matched:        g.Canonical.IsMatched(),
			Quantity:       g.Quantity,
			Price:          g.Price.String(),
		})
	}

	log.Printf("✅ Preview: status=%s goods=%d", response.Status, len(response.Goods))
	writeJSON(w, "Preview", response)
}

// ListRuns handles GET /admin/writeoff/runs?limit=20
func (c *WriteoffController) ListRuns(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListRuns: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ ListRuns: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			log.Printf("❌ ListRuns: Invalid limit: %s", limitStr)
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	runs, err := c.runs.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("❌ ListRuns: Error fetching runs: %v", err)
		http.Error(w, fmt.Sprintf("Failed to fetch runs: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ ListRuns: Returning %d runs", len(runs))
	writeJSON(w, "ListRuns", models.WriteoffRunListResponse{Runs: runs})
}

// ListArchive handles GET /admin/writeoff/archive
// Example response:
// {
//   "files": [
//     {
//       "driveFileId": "1AbC",
//       "fileName": "Списание_ЕГАИС_2026-01-04.xlsx",
//       "createdTime": "2026-01-04T21:00:03.000Z",
//       "url": "https://drive.google.com/uc?id=1AbC"
//     }
//   ]
// }
func (c *WriteoffController) ListArchive(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListArchive: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ ListArchive: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if c.archive == nil || c.archiveFolderID == "" {
		log.Printf("❌ ListArchive: Drive archive is not configured")
		http.Error(w, "Drive archive is not configured (set DRIVE_ARCHIVE_FOLDER_ID)", http.StatusServiceUnavailable)
		return
	}

	files, err := c.archive.ListArchive(r.Context(), c.archiveFolderID)
	if err != nil {
		log.Printf("❌ ListArchive: Error listing archive: %v", err)
		http.Error(w, fmt.Sprintf("Failed to list archive: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ ListArchive: Returning %d files", len(files))
	writeJSON(w, "ListArchive", models.ArchivedFileListResponse{Files: files})
}

// writeJSON writes v as a 200 JSON response
func writeJSON(w http.ResponseWriter, op string, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ %s: Error encoding response: %v", op, err)
	}
}
