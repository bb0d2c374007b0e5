package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
)

type RoomType string

const (
	RoomTypeSingle       RoomType = "Single"
	RoomTypeDouble       RoomType = "Double"
	RoomTypeSuite        RoomType = "Suite"
	RoomTypeDeluxe       RoomType = "Deluxe"
	RoomTypePresidential RoomType = "Presidential"
)

var roomTypes = []RoomType{
	RoomTypeSingle,
	RoomTypeDouble,
	RoomTypeSuite,
	RoomTypeDeluxe,
	RoomTypePresidential,
}

// ParseRoomType matches case-insensitively so model-supplied filters like
// "suite" resolve to the canonical enum value.
func ParseRoomType(s string) (RoomType, error) {
	for _, rt := range roomTypes {
		if strings.EqualFold(string(rt), strings.TrimSpace(s)) {
			return rt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown room type %q", contractx.ErrValidation, s)
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomCleaning    RoomStatus = "cleaning"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

var roomStatuses = []RoomStatus{RoomAvailable, RoomCleaning, RoomOccupied, RoomMaintenance}

// ParseRoomStatus validates a status update. Any status is reachable from
// any other; there is no transition table.
func ParseRoomStatus(s string) (RoomStatus, error) {
	for _, rs := range roomStatuses {
		if strings.EqualFold(string(rs), strings.TrimSpace(s)) {
			return rs, nil
		}
	}
	return "", fmt.Errorf("%w: invalid room status %q (valid: available, cleaning, occupied, maintenance)", ErrInvalidStatus, s)
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Room struct {
	bun.BaseModel `bun:"table:rooms,alias:r"`

	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	RoomNumber    string     `bun:"room_number,notnull,unique" json:"room_number"`
	RoomType      RoomType   `bun:"room_type,notnull" json:"room_type"`
	PricePerNight float64    `bun:"price_per_night,notnull" json:"price_per_night"`
	Status        RoomStatus `bun:"room_status,notnull,default:'available'" json:"room_status"`
}

// Booking rows are append-only history: a booking transitions
// confirmed -> cancelled exactly once and is never deleted.
type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID         int64         `bun:"id,pk,autoincrement" json:"id"`
	RoomID     int64         `bun:"room_id,notnull" json:"room_id"`
	RoomNumber string        `bun:"room_number,notnull" json:"room_number"`
	GuestEmail string        `bun:"guest_email,notnull" json:"guest_email"`
	CheckIn    string        `bun:"check_in_date,notnull" json:"check_in_date"`
	CheckOut   string        `bun:"check_out_date,notnull" json:"check_out_date"`
	Status     BookingStatus `bun:"status,notnull,default:'confirmed'" json:"status"`
	CreatedAt  time.Time     `bun:"created_at,notnull" json:"created_at"`
}

// Nights is the stay length of the half-open range [check-in, check-out).
func (b *Booking) Nights() int {
	in, errIn := time.Parse(dateLayout, b.CheckIn)
	out, errOut := time.Parse(dateLayout, b.CheckOut)
	if errIn != nil || errOut != nil {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

const dateLayout = "2006-01-02"

// ParseDate normalizes an ISO calendar date. Dates are kept as strings so
// the canonical half-open overlap predicate compares identically on every
// dialect (lexicographic order of ISO dates is date order).
func ParseDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", ErrDateInvalid, s)
	}
	return t.Format(dateLayout), nil
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
