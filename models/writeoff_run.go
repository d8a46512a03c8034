package models

// WriteoffRun represents a write-off run stored in the database
type WriteoffRun struct {
	ID             string `json:"id"`
	ProductType    string `json:"productType"`
	PeriodStart    string `json:"periodStart"`
	PeriodEnd      string `json:"periodEnd"`
	Status         string `json:"status"` // 'ok', 'empty' or 'failed'
	Reason         string `json:"reason,omitempty"`
	GoodsTotal     int    `json:"goodsTotal"`
	UnmatchedTotal int    `json:"unmatchedTotal"`
	FileName       string `json:"fileName,omitempty"`
	DriveFileID    string `json:"driveFileId,omitempty"`
	ChatID         int64  `json:"chatId,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

// WriteoffRunListResponse represents the response for listing runs
// Example response:
// {
//   "runs": [
//     {
//       "id": "0b6f8a3e-5d0c-4f7e-a0a5-2f1b0d9c7e11",
//       "productType": "alcohol",
//       "periodStart": "2026-01-04T00:00:00+03:00",
//       "periodEnd": "2026-01-04T23:59:59+03:00",
//       "status": "ok",
//       "goodsTotal": 42,
//       "unmatchedTotal": 3,
//       "fileName": "Списание_ЕГАИС_2026-01-04.xlsx",
//       "createdAt": "2026-01-05T09:00:00Z"
//     }
//   ]
// }
type WriteoffRunListResponse struct {
	Runs []WriteoffRun `json:"runs"`
}

// ReconciledGoodResponse represents a reconciled good in the preview response
type ReconciledGoodResponse struct {
	CommercialName string `json:"commercialName"`
	CanonicalName  string `json:"canonicalName"`
	Matched        bool   `json:"matched"`
	Quantity       int64  `json:"quantity"`
	Price          string `json:"price"`
}

// WriteoffPreviewResponse represents the response for a write-off preview
type WriteoffPreviewResponse struct {
	ProductType string                   `json:"productType"`
	Date        string                   `json:"date"`
	Status      string                   `json:"status"`
	Reason      string                   `json:"reason,omitempty"`
	Goods       []ReconciledGoodResponse `json:"goods"`
}
