package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LedgerTypeTopUp        = "top_up"
	LedgerTypeBuyChapter   = "buy_chapter"
	LedgerTypeBuyNovel     = "buy_novel"
	LedgerTypeWithdrawCoin = "withdraw_coin"
)

const (
	LedgerStatusPending   = "pending"
	LedgerStatusCompleted = "completed"
	LedgerStatusCancelled = "cancelled"
)

type User struct {
	Id    uuid.UUID
	Coins int
}

// LedgerEntry is one money movement. Its id doubles as the order
// reference sent to the payment provider for top-ups; Provider_ref
// holds the provider's own checkout id so a stuck top-up can be
// cancelled upstream.
type LedgerEntry struct {
	Id           uuid.UUID
	Requester_id uuid.UUID
	Novel_id     string
	Chapter_id   string
	Type         string
	Amount       int
	Status       string
	Provider_ref string
	Created_at   time.Time
	Completed_at *time.Time
}

type EntitlementRecord struct {
	User_id            uuid.UUID
	Novel_id           string
	Is_full            bool
	Chapter_ids        []string
	Full_chapter_count int
	Created_at         time.Time
	Updated_at         time.Time
}

type AuthorEarning struct {
	Id               uuid.UUID
	Author_id        uuid.UUID
	Novel_id         string
	Chapter_id       string
	Amount           int
	Type             string
	Source_ledger_id uuid.UUID
	Created_at       time.Time
}

// Chapter carries only the pricing/lifecycle fields this service owns.
// Author_id is denormalized from the novel so a purchase doesn't need
// a second lookup.
type Chapter struct {
	Id             string
	Novel_id       string
	Title          string
	Price          int
	Is_paid        bool
	Chapter_number int
	Scheduled_at   *time.Time
	Is_draft       bool
	Is_public      bool
	Is_lock        bool
	Author_id      string
}

type Novel struct {
	Id             string
	Author_id      string
	Title          string
	Price          int
	Is_paid        bool
	Total_chapters int
	Completed      bool
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HandleTopUpParams struct {
	Plan_id string `json:"plan_id" validate:"required"`
}

type HandleTopUpResponse struct {
	Url      string `json:"url"`
	Order_id string `json:"order_id"`
}

type HandleWithdrawParams struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

type HandlePurchaseResponse struct {
	Ledger_id string `json:"ledger_id"`
	Amount    int    `json:"amount"`
}

type HandleHasAccessResponse struct {
	Access bool `json:"access"`
}

type HandleGetLedgerResponseEntry struct {
	Id           string     `json:"id"`
	Type         string     `json:"type"`
	Amount       int        `json:"amount"`
	Status       string     `json:"status"`
	Novel_id     string     `json:"novel_id,omitempty"`
	Chapter_id   string     `json:"chapter_id,omitempty"`
	Created_at   time.Time  `json:"created_at"`
	Completed_at *time.Time `json:"completed_at,omitempty"`
}

type HandleGetLedgerResponse struct {
	Entries []HandleGetLedgerResponseEntry `json:"entries"`
}
