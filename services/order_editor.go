package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/yeremiapane/lunchorder/client"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

var (
	ErrEditorClosed       = errors.New("no order is being edited")
	ErrSubmitInFlight     = errors.New("order is already being submitted")
	ErrNoRestaurants      = errors.New("no restaurants are available for this date")
	ErrRestaurantRequired = errors.New("choose a restaurant")
	ErrOrderTextRequired  = errors.New("order text is required")
	ErrUnknownRestaurant  = errors.New("restaurant is not available for this date")
	ErrNoMotd             = errors.New("restaurant has no suggestion for this day")
	ErrOrderLocked        = errors.New("only pending orders can be changed")
)

const submitFailedMessage = "Failed to save order."

type EditorState int

const (
	EditorClosed EditorState = iota
	EditorSelecting
	EditorReady
	EditorSubmitting
)

func (s EditorState) String() string {
	switch s {
	case EditorSelecting:
		return "selecting"
	case EditorReady:
		return "ready"
	case EditorSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

type OrderWriter interface {
	CreateSimple(ctx context.Context, in models.SimpleOrderInput) (models.Order, error)
	UpdateSimple(ctx context.Context, id uint, in models.SimpleOrderInput) (models.Order, error)
}

type Resolver interface {
	AvailableFor(ctx context.Context, date string) Availability
}

// Draft is the unsaved edit for one date.
type Draft struct {
	Date         string
	RestaurantID uint
	OrderText    string
	Notes        string
	// Existing is the order being changed, nil on the new-order path.
	Existing *models.Order
}

// OrderEditor edits at most one order draft at a time.
type OrderEditor struct {
	resolver Resolver
	store    *OrderStore
	orders   OrderWriter

	mu           sync.Mutex
	open         bool
	submitting   bool
	generation   uint64
	draft        Draft
	availability Availability
	formErr      string
	inFlight     map[string]bool
}

func NewOrderEditor(resolver Resolver, store *OrderStore, orders OrderWriter) *OrderEditor {
	return &OrderEditor{
		resolver: resolver,
		store:    store,
		orders:   orders,
		inFlight: make(map[string]bool),
	}
}

// Open starts editing date. An existing order for the date seeds the draft.
// Availability failures do not fail Open; they leave the editor in
// EditorSelecting with nothing to choose.
func (e *OrderEditor) Open(ctx context.Context, date string) (Availability, error) {
	avail := e.resolver.AvailableFor(ctx, date)
	if avail.Err != nil && !avail.LoadFailed {
		return avail, avail.Err
	}

	draft := Draft{Date: date}
	if existing, ok := e.store.Get(date); ok {
		o := existing
		draft.Existing = &o
		draft.RestaurantID = o.RestaurantID
		draft.OrderText = o.OrderText
		draft.Notes = o.Notes
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.open = true
	e.submitting = false
	e.draft = draft
	e.availability = avail
	e.formErr = ""
	if avail.LoadFailed {
		e.formErr = client.DisplayMessage(avail.Err, "Failed to load restaurants.")
	}
	return avail, nil
}

// Close discards the draft. A submit still in flight keeps running and its
// result still reaches the store.
func (e *OrderEditor) Close() {
	e.mu.Lock()
	e.generation++
	e.open = false
	e.submitting = false
	e.draft = Draft{}
	e.availability = Availability{}
	e.formErr = ""
	e.mu.Unlock()
}

func (e *OrderEditor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *OrderEditor) stateLocked() EditorState {
	switch {
	case !e.open:
		return EditorClosed
	case e.submitting:
		return EditorSubmitting
	case e.validateLocked() == nil:
		return EditorReady
	default:
		return EditorSelecting
	}
}

func (e *OrderEditor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *OrderEditor) Availability() Availability {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.availability
}

// FormError is the message of the last failed load or submit.
func (e *OrderEditor) FormError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formErr
}

func (e *OrderEditor) SelectRestaurant(restaurantID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	if _, ok := e.availability.Option(restaurantID); !ok {
		return ErrUnknownRestaurant
	}
	e.draft.RestaurantID = restaurantID
	return nil
}

func (e *OrderEditor) SetText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	e.draft.OrderText = text
	return nil
}

func (e *OrderEditor) SetNotes(notes string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	e.draft.Notes = notes
	return nil
}

// ApplyMotd appends the selected restaurant's suggestion to the order text.
func (e *OrderEditor) ApplyMotd() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	opt, ok := e.availability.Option(e.draft.RestaurantID)
	if !ok {
		return ErrRestaurantRequired
	}
	if opt.MotdOption == nil || strings.TrimSpace(*opt.MotdOption) == "" {
		return ErrNoMotd
	}
	e.draft.OrderText = AppendSuggestion(e.draft.OrderText, *opt.MotdOption)
	return nil
}

// AppendSuggestion adds suggestion on a new line unless text already contains it.
func AppendSuggestion(text, suggestion string) string {
	next := strings.TrimSpace(suggestion)
	current := strings.TrimSpace(text)
	switch {
	case next == "":
		return text
	case current == "":
		return next
	case strings.Contains(current, next):
		return current
	default:
		return current + "\n" + next
	}
}

func (e *OrderEditor) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrEditorClosed
	}
	return e.validateLocked()
}

func (e *OrderEditor) validateLocked() error {
	if e.availability.Empty() {
		return ErrNoRestaurants
	}
	if e.draft.RestaurantID == 0 {
		return ErrRestaurantRequired
	}
	if strings.TrimSpace(e.draft.OrderText) == "" {
		return ErrOrderTextRequired
	}
	if e.draft.Existing != nil && !e.draft.Existing.Status.Editable() {
		return ErrOrderLocked
	}
	return nil
}

func (e *OrderEditor) editableLocked() error {
	if !e.open {
		return ErrEditorClosed
	}
	if e.submitting {
		return ErrSubmitInFlight
	}
	return nil
}

// Submit creates the order, or updates it when the store already holds one
// for the date. On failure the draft is kept and FormError is set.
func (e *OrderEditor) Submit(ctx context.Context) (models.Order, error) {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return models.Order{}, err
	}
	date := e.draft.Date
	if e.inFlight[date] {
		e.mu.Unlock()
		return models.Order{}, ErrSubmitInFlight
	}
	if err := e.validateLocked(); err != nil {
		e.formErr = err.Error()
		e.mu.Unlock()
		return models.Order{}, err
	}

	in := models.SimpleOrderInput{
		RestaurantID: e.draft.RestaurantID,
		OrderText:    strings.TrimSpace(e.draft.OrderText),
		Notes:        strings.TrimSpace(e.draft.Notes),
	}
	e.submitting = true
	e.inFlight[date] = true
	e.formErr = ""
	generation := e.generation
	e.mu.Unlock()

	var (
		order models.Order
		err   error
	)
	if existing, ok := e.store.Get(date); ok {
		order, err = e.orders.UpdateSimple(ctx, existing.ID, in)
	} else {
		in.OrderDate = date
		order, err = e.orders.CreateSimple(ctx, in)
	}

	if err == nil {
		e.store.Put(date, order)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, date)
	attached := e.open && e.generation == generation

	if err != nil {
		utils.ErrorLogger.Errorf("submit order for %s: %v", date, err)
		if attached {
			e.submitting = false
			e.formErr = client.DisplayMessage(err, submitFailedMessage)
		}
		return models.Order{}, err
	}

	if attached {
		e.open = false
		e.submitting = false
		e.draft = Draft{}
		e.availability = Availability{}
		e.formErr = ""
	}
	return order, nil
}
