package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
	ledgerx "github.com/vinayakrana/Hotel-Chat-BE/agent/ledger"
)

type handlers struct {
	ledger *ledgerx.Ledger
	faq    contractx.FaqResolver
	now    func() time.Time
}

func (h handlers) declare() []Tool {
	return []Tool{
		{
			Name:        ToolSearchRooms,
			Description: "Search for available rooms. Optionally filter by room type (Single, Double, Suite, Deluxe, Presidential) and maximum price per night.",
			Parameters: objectSchema(map[string]any{
				"room_type": stringProp("Type of room to search for (optional)"),
				"max_price": numberProp("Maximum price per night (optional)"),
			}, nil),
			MinRole: contractx.RoleGuest,
			Handler: h.searchRooms,
		},
		{
			Name:        ToolBookRoom,
			Description: "Book a hotel room for a guest. Validates dates and checks availability.",
			Parameters: objectSchema(map[string]any{
				"room_number": stringProp("Room number to book (e.g., \"101\", \"201\")"),
				"guest_email": stringProp("Guest's email address"),
				"check_in":    stringProp("Check-in date in YYYY-MM-DD format"),
				"check_out":   stringProp("Check-out date in YYYY-MM-DD format"),
			}, []string{"room_number", "guest_email", "check_in", "check_out"}),
			MinRole: contractx.RoleGuest,
			Handler: h.bookRoom,
		},
		{
			Name:        ToolCancelBooking,
			Description: "Cancel a booking. Only the guest who made the booking can cancel it; staff can cancel any booking.",
			Parameters: objectSchema(map[string]any{
				"booking_id":  integerProp("The booking ID to cancel"),
				"guest_email": stringProp("Guest's email address (for verification)"),
			}, []string{"booking_id", "guest_email"}),
			MinRole: contractx.RoleGuest,
			Handler: h.cancelBooking,
		},
		{
			Name:        ToolGetMyBookings,
			Description: "Get all bookings for a specific guest.",
			Parameters: objectSchema(map[string]any{
				"guest_email": stringProp("Guest's email address"),
			}, []string{"guest_email"}),
			MinRole: contractx.RoleGuest,
			Handler: h.getMyBookings,
		},
		{
			Name:        ToolGetRoomDetails,
			Description: "Get detailed information about a specific room.",
			Parameters: objectSchema(map[string]any{
				"room_number": stringProp("Room number to get details for"),
			}, []string{"room_number"}),
			MinRole: contractx.RoleGuest,
			Handler: h.getRoomDetails,
		},
		{
			Name:        ToolAnswerFAQ,
			Description: "Answer frequently asked questions about the hotel by searching the knowledge base.",
			Parameters: objectSchema(map[string]any{
				"question": stringProp("The question to answer"),
			}, []string{"question"}),
			MinRole: contractx.RoleGuest,
			Handler: h.answerFAQ,
		},
		{
			Name:        ToolGetAllBookings,
			Description: "Get all bookings in the system (STAFF ONLY). Optionally filter by check-in or check-out date.",
			Parameters: objectSchema(map[string]any{
				"date_filter": stringProp("Optional date in YYYY-MM-DD format to filter bookings"),
			}, nil),
			MinRole: contractx.RoleStaff,
			Handler: h.getAllBookings,
		},
		{
			Name:        ToolGetTodaysCheckins,
			Description: "Get all check-ins scheduled for today (STAFF ONLY). Useful for front desk staff to prepare for arrivals.",
			Parameters:  objectSchema(map[string]any{}, nil),
			MinRole:     contractx.RoleStaff,
			Handler:     h.getTodaysCheckins,
		},
		{
			Name:        ToolGetAvailableCounts,
			Description: "Get count of available rooms by type (STAFF ONLY). Quick overview of occupancy status.",
			Parameters:  objectSchema(map[string]any{}, nil),
			MinRole:     contractx.RoleStaff,
			Handler:     h.getAvailableCounts,
		},
		{
			Name:        ToolUpdateRoomStatus,
			Description: "Update the status of a room (STAFF ONLY). Valid statuses: available, cleaning, occupied, maintenance.",
			Parameters: objectSchema(map[string]any{
				"room_number": stringProp("Room number to update"),
				"status":      stringProp("New status (available, cleaning, occupied, maintenance)"),
			}, []string{"room_number", "status"}),
			MinRole: contractx.RoleStaff,
			Handler: h.updateRoomStatus,
		},
	}
}

func (h handlers) searchRooms(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		RoomType string  `json:"room_type"`
		MaxPrice float64 `json:"max_price"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	filter := ledgerx.SearchFilter{MaxPrice: args.MaxPrice}
	if strings.TrimSpace(args.RoomType) != "" {
		roomType, err := ledgerx.ParseRoomType(args.RoomType)
		if err != nil {
			return "", err
		}
		filter.RoomType = roomType
	}

	rooms, err := h.ledger.SearchAvailable(ctx, filter)
	if err != nil {
		return "", err
	}
	if len(rooms) == 0 {
		return "No rooms found matching your criteria. Try adjusting your search parameters.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d available room(s):\n", len(rooms))
	for _, room := range rooms {
		fmt.Fprintf(&b, "\nRoom %s (%s)\n", room.RoomNumber, room.RoomType)
		fmt.Fprintf(&b, "  $%.2f per night\n", room.PricePerNight)
		fmt.Fprintf(&b, "  Status: %s\n", room.Status)
	}
	return strings.TrimSpace(b.String()), nil
}

func (h handlers) bookRoom(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		RoomNumber string `json:"room_number"`
		GuestEmail string `json:"guest_email"`
		CheckIn    string `json:"check_in"`
		CheckOut   string `json:"check_out"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	bookingID, err := h.ledger.Book(ctx, args.RoomNumber, args.GuestEmail, args.CheckIn, args.CheckOut)
	if err != nil {
		return "", err
	}

	booking, err := h.ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	room, err := h.ledger.GetRoom(ctx, booking.RoomNumber)
	if err != nil {
		return "", err
	}

	nights := booking.Nights()
	var b strings.Builder
	b.WriteString("Booking Confirmed!\n\n")
	fmt.Fprintf(&b, "Booking ID: %d\n", booking.ID)
	fmt.Fprintf(&b, "Room: %s (%s)\n", room.RoomNumber, room.RoomType)
	fmt.Fprintf(&b, "Guest: %s\n", booking.GuestEmail)
	fmt.Fprintf(&b, "Check-in: %s\n", booking.CheckIn)
	fmt.Fprintf(&b, "Check-out: %s\n", booking.CheckOut)
	fmt.Fprintf(&b, "Nights: %d\n", nights)
	fmt.Fprintf(&b, "Total: $%.2f\n\n", float64(nights)*room.PricePerNight)
	b.WriteString("Please save your booking ID for future reference.")
	return b.String(), nil
}

func (h handlers) cancelBooking(ctx context.Context, caller contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		BookingID  int64  `json:"booking_id"`
		GuestEmail string `json:"guest_email"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	staff := caller.Role == contractx.RoleStaff
	booking, err := h.ledger.Cancel(ctx, args.BookingID, args.GuestEmail, staff)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Booking Cancelled Successfully\n\n")
	fmt.Fprintf(&b, "Booking ID: %d\n", booking.ID)
	fmt.Fprintf(&b, "Room: %s\n", booking.RoomNumber)
	fmt.Fprintf(&b, "Was scheduled: %s to %s\n\n", booking.CheckIn, booking.CheckOut)
	b.WriteString("If you were charged, a refund will be processed according to our cancellation policy.")
	return b.String(), nil
}

func (h handlers) getMyBookings(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		GuestEmail string `json:"guest_email"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	bookings, err := h.ledger.ListByGuest(ctx, args.GuestEmail)
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return fmt.Sprintf("You have no bookings on record for %s.", args.GuestEmail), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your Bookings (%d total):\n", len(bookings))
	for _, booking := range bookings {
		fmt.Fprintf(&b, "\nBooking #%d\n", booking.ID)
		fmt.Fprintf(&b, "  Room: %s\n", booking.RoomNumber)
		fmt.Fprintf(&b, "  %s to %s\n", booking.CheckIn, booking.CheckOut)
		fmt.Fprintf(&b, "  Status: %s\n", strings.ToUpper(string(booking.Status)))
	}
	return strings.TrimSpace(b.String()), nil
}

var roomTypeDescriptions = map[ledgerx.RoomType]string{
	ledgerx.RoomTypeSingle:       "Perfect for solo travelers. Includes one queen bed, work desk, and ensuite bathroom.",
	ledgerx.RoomTypeDouble:       "Ideal for couples or friends. Features two double beds, sitting area, and city view.",
	ledgerx.RoomTypeSuite:        "Spacious suite with separate living area, king bed, minibar, and premium amenities.",
	ledgerx.RoomTypeDeluxe:       "Luxury room with king bed, sofa, premium linens, and stunning views.",
	ledgerx.RoomTypePresidential: "Ultimate luxury with separate bedroom, living room, dining area, and butler service.",
}

func (h handlers) getRoomDetails(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		RoomNumber string `json:"room_number"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	room, err := h.ledger.GetRoom(ctx, args.RoomNumber)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Room %s Details\n\n", room.RoomNumber)
	fmt.Fprintf(&b, "Type: %s\n", room.RoomType)
	fmt.Fprintf(&b, "Price: $%.2f per night\n", room.PricePerNight)
	fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(string(room.Status)))
	if desc, ok := roomTypeDescriptions[room.RoomType]; ok {
		fmt.Fprintf(&b, "\nDescription: %s", desc)
	}
	return b.String(), nil
}

const faqFallback = "I don't have specific information about that in our FAQ database. " +
	"Please contact the front desk at extension 100 or email info@hotel.com for assistance."

func (h handlers) answerFAQ(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		Question string `json:"question"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	snippets, err := h.faq.Resolve(ctx, args.Question, 3)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return faqFallback, nil
	}

	var b strings.Builder
	b.WriteString("Based on our hotel policies:\n\n")
	b.WriteString(snippets[0])
	if len(snippets) > 1 {
		b.WriteString("\n\nRelated information:\n")
		for i, snippet := range snippets[1:] {
			fmt.Fprintf(&b, "%d. %s\n", i+1, snippet)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func (h handlers) getAllBookings(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		DateFilter string `json:"date_filter"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	bookings, err := h.ledger.ListAll(ctx, strings.TrimSpace(args.DateFilter))
	if err != nil {
		return "", err
	}

	filterMsg := ""
	if args.DateFilter != "" {
		filterMsg = fmt.Sprintf(" for %s", args.DateFilter)
	}
	if len(bookings) == 0 {
		return fmt.Sprintf("No bookings found%s.", filterMsg), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "All Bookings%s (%d total):\n", filterMsg, len(bookings))
	for _, booking := range bookings {
		fmt.Fprintf(&b, "\nBooking #%d\n", booking.ID)
		fmt.Fprintf(&b, "  Guest: %s\n", booking.GuestEmail)
		fmt.Fprintf(&b, "  Room: %s\n", booking.RoomNumber)
		fmt.Fprintf(&b, "  %s to %s\n", booking.CheckIn, booking.CheckOut)
		fmt.Fprintf(&b, "  Status: %s\n", strings.ToUpper(string(booking.Status)))
	}
	return strings.TrimSpace(b.String()), nil
}

func (h handlers) getTodaysCheckins(ctx context.Context, _ contractx.Identity, _ string) (string, error) {
	today := ledgerx.FormatDate(h.now())
	checkins, err := h.ledger.CheckinsOn(ctx, today)
	if err != nil {
		return "", err
	}
	if len(checkins) == 0 {
		return fmt.Sprintf("No check-ins scheduled for today (%s).", today), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's Check-ins (%s) - %d arrival(s):\n", today, len(checkins))
	for _, checkin := range checkins {
		fmt.Fprintf(&b, "\nRoom %s\n", checkin.RoomNumber)
		fmt.Fprintf(&b, "  Guest: %s\n", checkin.GuestEmail)
		fmt.Fprintf(&b, "  Booking ID: %d\n", checkin.ID)
		fmt.Fprintf(&b, "  Check-out: %s\n", checkin.CheckOut)
	}
	b.WriteString("\nTip: Ensure rooms are ready and welcome packets are prepared.")
	return b.String(), nil
}

func (h handlers) getAvailableCounts(ctx context.Context, _ contractx.Identity, _ string) (string, error) {
	counts, err := h.ledger.AvailabilityCounts(ctx)
	if err != nil {
		return "", err
	}
	if len(counts) == 0 {
		return "No available rooms at the moment.", nil
	}

	types := make([]string, 0, len(counts))
	for roomType := range counts {
		types = append(types, string(roomType))
	}
	sort.Strings(types)

	total := 0
	var b strings.Builder
	b.WriteString("Room Availability Overview:\n\n")
	for _, roomType := range types {
		count := counts[ledgerx.RoomType(roomType)]
		fmt.Fprintf(&b, "%s: %d available\n", roomType, count)
		total += count
	}
	fmt.Fprintf(&b, "\nTotal Available: %d rooms", total)
	return b.String(), nil
}

func (h handlers) updateRoomStatus(ctx context.Context, _ contractx.Identity, rawArgs string) (string, error) {
	var args struct {
		RoomNumber string `json:"room_number"`
		Status     string `json:"status"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}

	status, err := ledgerx.ParseRoomStatus(args.Status)
	if err != nil {
		return "", err
	}
	previous, err := h.ledger.SetRoomStatus(ctx, args.RoomNumber, status)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Room Status Updated\n\n")
	fmt.Fprintf(&b, "Room: %s\n", args.RoomNumber)
	fmt.Fprintf(&b, "Previous Status: %s\n", previous)
	fmt.Fprintf(&b, "New Status: %s", strings.ToUpper(string(status)))
	return b.String(), nil
}

func decodeArgs(raw string, dst any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func numberProp(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func integerProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}
