package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// Ledger is the single owner and writer of room and booking records. Writes
// are serialized per room: Book holds the room's mutex across the
// check-then-insert transaction so two concurrent bookers for overlapping
// dates cannot both pass the overlap check.
type Ledger struct {
	db    *bun.DB
	locks roomLocks
	now   func() time.Time
}

func New(db *bun.DB) *Ledger {
	return &Ledger{
		db:    db,
		locks: roomLocks{locks: make(map[string]*sync.Mutex)},
		now:   time.Now,
	}
}

// WithClock overrides the ledger clock. Tests use it to pin "today".
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// SearchFilter narrows SearchAvailable. Zero values mean "no constraint".
type SearchFilter struct {
	RoomType RoomType
	MaxPrice float64
}

// SearchAvailable returns rooms with status available, ascending by price
// for deterministic presentation.
func (l *Ledger) SearchAvailable(ctx context.Context, filter SearchFilter) ([]Room, error) {
	q := l.db.NewSelect().Model((*Room)(nil)).
		Where("room_status = ?", RoomAvailable).
		Order("price_per_night ASC")
	if filter.RoomType != "" {
		q = q.Where("room_type = ?", filter.RoomType)
	}
	if filter.MaxPrice > 0 {
		q = q.Where("price_per_night <= ?", filter.MaxPrice)
	}

	var rooms []Room
	if err := q.Scan(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("search available rooms: %w", err)
	}
	return rooms, nil
}

func (l *Ledger) GetRoom(ctx context.Context, roomNumber string) (*Room, error) {
	room := new(Room)
	err := l.db.NewSelect().Model(room).Where("room_number = ?", roomNumber).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %s", ErrRoomNotFound, roomNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomNumber, err)
	}
	return room, nil
}

// IsAvailable reports whether the room can host [checkIn, checkOut). False
// when the room does not exist, its status is not available, or any
// confirmed booking overlaps the half-open range.
func (l *Ledger) IsAvailable(ctx context.Context, roomNumber, checkIn, checkOut string) (bool, error) {
	checkIn, err := ParseDate(checkIn)
	if err != nil {
		return false, err
	}
	checkOut, err = ParseDate(checkOut)
	if err != nil {
		return false, err
	}

	room, err := l.GetRoom(ctx, roomNumber)
	if errors.Is(err, ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if room.Status != RoomAvailable {
		return false, nil
	}

	n, err := l.countOverlapping(ctx, l.db, roomNumber, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// countOverlapping applies the canonical half-open overlap test:
// [a1,a2) and [b1,b2) overlap iff a1 < b2 and b1 < a2.
func (l *Ledger) countOverlapping(ctx context.Context, db bun.IDB, roomNumber, checkIn, checkOut string) (int, error) {
	n, err := db.NewSelect().Model((*Booking)(nil)).
		Where("room_number = ?", roomNumber).
		Where("status = ?", BookingConfirmed).
		Where("check_in_date < ?", checkOut).
		Where("check_out_date > ?", checkIn).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return n, nil
}

// Book validates dates and atomically re-checks availability before
// inserting. The room mutex plus the transaction make the existence check,
// overlap check, and insert one logical unit.
func (l *Ledger) Book(ctx context.Context, roomNumber, guestEmail, checkIn, checkOut string) (int64, error) {
	checkIn, err := ParseDate(checkIn)
	if err != nil {
		return 0, err
	}
	checkOut, err = ParseDate(checkOut)
	if err != nil {
		return 0, err
	}
	if checkOut <= checkIn {
		return 0, fmt.Errorf("%w: check-out date must be after check-in date", ErrDateInvalid)
	}
	if today := FormatDate(l.now()); checkIn < today {
		return 0, fmt.Errorf("%w: check-in date cannot be in the past", ErrDateInvalid)
	}

	unlock := l.locks.lock(roomNumber)
	defer unlock()

	var bookingID int64
	err = l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		room := new(Room)
		if err := tx.NewSelect().Model(room).Where("room_number = ?", roomNumber).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: room %s", ErrRoomNotFound, roomNumber)
			}
			return fmt.Errorf("load room %s: %w", roomNumber, err)
		}
		if room.Status != RoomAvailable {
			return fmt.Errorf("%w: room %s has status %s", ErrNotAvailable, roomNumber, room.Status)
		}

		n, err := l.countOverlapping(ctx, tx, roomNumber, checkIn, checkOut)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: room %s between %s and %s", ErrNotAvailable, roomNumber, checkIn, checkOut)
		}

		booking := &Booking{
			RoomID:     room.ID,
			RoomNumber: room.RoomNumber,
			GuestEmail: guestEmail,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Status:     BookingConfirmed,
			CreatedAt:  l.now().UTC(),
		}
		if _, err := tx.NewInsert().Model(booking).Exec(ctx); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return bookingID, nil
}

func (l *Ledger) GetBooking(ctx context.Context, bookingID int64) (*Booking, error) {
	booking := new(Booking)
	err := l.db.NewSelect().Model(booking).Where("id = ?", bookingID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking #%d", ErrBookingNotFound, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking #%d: %w", bookingID, err)
	}
	return booking, nil
}

// Cancel transitions a booking confirmed -> cancelled exactly once. Only the
// owning guest may cancel; staff bypasses the ownership check. A second
// cancellation reports ErrAlreadyCancelled and leaves the row unchanged.
func (l *Ledger) Cancel(ctx context.Context, bookingID int64, guestEmail string, staff bool) (*Booking, error) {
	var cancelled *Booking
	err := l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		booking := new(Booking)
		if err := tx.NewSelect().Model(booking).Where("id = ?", bookingID).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: booking #%d", ErrBookingNotFound, bookingID)
			}
			return fmt.Errorf("load booking #%d: %w", bookingID, err)
		}
		if booking.Status == BookingCancelled {
			return fmt.Errorf("%w: booking #%d", ErrAlreadyCancelled, bookingID)
		}
		if !staff && booking.GuestEmail != guestEmail {
			return fmt.Errorf("%w: booking #%d", ErrNotOwner, bookingID)
		}

		booking.Status = BookingCancelled
		if _, err := tx.NewUpdate().Model(booking).
			Column("status").
			Where("id = ?", bookingID).
			Exec(ctx); err != nil {
			return fmt.Errorf("cancel booking #%d: %w", bookingID, err)
		}
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ListByGuest returns the guest's full booking history, newest first.
func (l *Ledger) ListByGuest(ctx context.Context, guestEmail string) ([]Booking, error) {
	var bookings []Booking
	err := l.db.NewSelect().Model(&bookings).
		Where("guest_email = ?", guestEmail).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", guestEmail, err)
	}
	return bookings, nil
}

// ListAll returns confirmed bookings, or bookings whose check-in or
// check-out equals dateFilter when one is given.
func (l *Ledger) ListAll(ctx context.Context, dateFilter string) ([]Booking, error) {
	q := l.db.NewSelect().Model((*Booking)(nil)).Order("check_in_date ASC")
	if dateFilter != "" {
		date, err := ParseDate(dateFilter)
		if err != nil {
			return nil, err
		}
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("check_in_date = ?", date).WhereOr("check_out_date = ?", date)
		})
	} else {
		q = q.Where("status = ?", BookingConfirmed)
	}

	var bookings []Booking
	if err := q.Scan(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	return bookings, nil
}

// CheckinsOn returns confirmed bookings whose check-in equals date, ordered
// by room number for the front desk.
func (l *Ledger) CheckinsOn(ctx context.Context, date string) ([]Booking, error) {
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	var bookings []Booking
	err = l.db.NewSelect().Model(&bookings).
		Where("check_in_date = ?", date).
		Where("status = ?", BookingConfirmed).
		Order("room_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list check-ins on %s: %w", date, err)
	}
	return bookings, nil
}

// AvailabilityCounts groups currently available rooms by type.
func (l *Ledger) AvailabilityCounts(ctx context.Context) (map[RoomType]int, error) {
	var rows []struct {
		RoomType RoomType `bun:"room_type"`
		Count    int      `bun:"count"`
	}
	err := l.db.NewSelect().Model((*Room)(nil)).
		Column("room_type").
		ColumnExpr("count(*) AS count").
		Where("room_status = ?", RoomAvailable).
		Group("room_type").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("availability counts: %w", err)
	}

	counts := make(map[RoomType]int, len(rows))
	for _, row := range rows {
		counts[row.RoomType] = row.Count
	}
	return counts, nil
}

// SetRoomStatus unconditionally overwrites the room status and returns the
// previous value.
func (l *Ledger) SetRoomStatus(ctx context.Context, roomNumber string, status RoomStatus) (RoomStatus, error) {
	var previous RoomStatus
	err := l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		room := new(Room)
		if err := tx.NewSelect().Model(room).Where("room_number = ?", roomNumber).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: room %s", ErrRoomNotFound, roomNumber)
			}
			return fmt.Errorf("load room %s: %w", roomNumber, err)
		}
		previous = room.Status

		if _, err := tx.NewUpdate().Model((*Room)(nil)).
			Set("room_status = ?", status).
			Where("room_number = ?", roomNumber).
			Exec(ctx); err != nil {
			return fmt.Errorf("update room %s status: %w", roomNumber, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// roomLocks hands out one mutex per room number.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *roomLocks) lock(roomNumber string) (unlock func()) {
	r.mu.Lock()
	m, ok := r.locks[roomNumber]
	if !ok {
		m = &sync.Mutex{}
		r.locks[roomNumber] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
