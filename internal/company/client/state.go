package client

import (
	"sync"

	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/gartstein/companies/internal/company/models"
	"github.com/gartstein/companies/internal/company/query"
	"github.com/google/uuid"
)

// DefaultPageSize is the client page size.
const DefaultPageSize = 9

// Mode selects where filtering happens.
type Mode string

const (
	// ModeRemote sends the filter to the server and holds one page.
	ModeRemote Mode = "remote"
	// ModeLocal holds the full set and filters it in memory.
	ModeLocal Mode = "local"
)

// Status is the state of the directory.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusLoadingList   Status = "loading-list"
	StatusLoadingDetail Status = "loading-detail"
	StatusSaving        Status = "saving"
	StatusError         Status = "error"
)

// Pagination is derived paging information for the visible page.
type Pagination struct {
	PageSize    int `json:"pageSize" yaml:"pageSize"`
	CurrentPage int `json:"currentPage" yaml:"currentPage"`
	TotalPages  int `json:"totalPages" yaml:"totalPages"`
	TotalCount  int `json:"totalCount" yaml:"totalCount"`
}

// EditSlot is the current-edit slot. Open with a nil Target means a new
// record is being created.
type EditSlot struct {
	Open   bool
	Target *models.Company
}

// View is the visible page of the directory.
type View struct {
	Items      []models.Company `json:"items" yaml:"items"`
	Pagination Pagination       `json:"pagination" yaml:"pagination"`
}

// State is the client directory state. All methods are safe for
// concurrent use.
type State struct {
	mu sync.Mutex

	mode    Mode
	builder query.Builder
	status  Status

	held    []models.Company
	filters query.Spec
	// remote holds the server's pagination in remote mode.
	remote Pagination

	current *models.Company
	edit    EditSlot

	listErr error
	formErr error

	listSeq   uint64
	detailSeq uint64
}

// NewState returns an idle state. A non-positive pageSize uses DefaultPageSize.
func NewState(mode Mode, pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if mode != ModeLocal {
		mode = ModeRemote
	}
	return &State{
		mode:    mode,
		builder: query.NewBuilder(pageSize, 0),
		status:  StatusIdle,
		filters: defaultFilters(pageSize),
		remote:  Pagination{PageSize: pageSize, CurrentPage: 1, TotalPages: 1},
	}
}

func defaultFilters(pageSize int) query.Spec {
	return query.Spec{Sort: string(query.FieldName), Page: 1, PageSize: pageSize}
}

func (s *State) Mode() Mode {
	return s.mode
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Filters returns the current filters, page included.
func (s *State) Filters() query.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the filter fields and sort and resets the page to 1.
// A zero PageSize keeps the current one.
func (s *State) SetFilters(spec query.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spec.PageSize <= 0 {
		spec.PageSize = s.filters.PageSize
	}
	if spec.Sort == "" {
		spec.Sort = string(query.FieldName)
	}
	spec.Page = 1
	s.filters = spec
}

// ClearFilters drops every filter, sorts by name and returns to page 1.
func (s *State) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = defaultFilters(s.filters.PageSize)
}

// SetPage moves the page cursor. Pages below 1 are treated as 1.
func (s *State) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Page = max(page, 1)
}

// Held returns a copy of the held set.
func (s *State) Held() []models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Company(nil), s.held...)
}

// Current returns the detail record, if any.
func (s *State) Current() *models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ClearCurrent forgets the detail record.
func (s *State) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func (s *State) ListError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

func (s *State) FormError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formErr
}

// ClearErrors drops both list- and form-scoped errors.
func (s *State) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = nil
	s.formErr = nil
	if s.status == StatusError {
		s.status = StatusIdle
	}
}

func (s *State) Edit() EditSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edit
}

// OpenCreate opens the edit slot for a new record.
func (s *State) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = EditSlot{Open: true}
	s.formErr = nil
}

// OpenEdit opens the edit slot on target.
func (s *State) OpenEdit(target *models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *target
	s.edit = EditSlot{Open: true, Target: &c}
	s.formErr = nil
}

// CancelEdit closes the edit slot.
func (s *State) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = EditSlot{}
	s.formErr = nil
}

// BeginList enters loading-list and returns the sequence number of the
// request. Only the response carrying the latest number is applied.
func (s *State) BeginList() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listSeq++
	s.status = StatusLoadingList
	s.listErr = nil
	return s.listSeq
}

// FinishList applies a list response. It reports false when seq is stale.
// In local mode page holds the full set.
func (s *State) FinishList(seq uint64, page *models.CompanyPage, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.listSeq {
		return false
	}
	if err != nil {
		s.status = StatusError
		s.listErr = err
		return true
	}

	s.status = StatusIdle
	s.held = append([]models.Company(nil), page.Items...)
	if s.mode == ModeRemote {
		s.remote = Pagination{
			PageSize:    page.PageSize,
			CurrentPage: page.Page,
			TotalPages:  max(page.TotalPages, 1),
			TotalCount:  page.TotalCount,
		}
	}
	return true
}

// BeginDetail enters loading-detail and returns the request's sequence number.
func (s *State) BeginDetail() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailSeq++
	s.status = StatusLoadingDetail
	s.listErr = nil
	return s.detailSeq
}

// FinishDetail applies a single-record response. It reports false when seq
// is stale.
func (s *State) FinishDetail(seq uint64, c *models.Company, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.detailSeq {
		return false
	}
	if err != nil {
		s.status = StatusError
		s.listErr = err
		return true
	}
	s.status = StatusIdle
	s.current = c
	return true
}

// BeginSave enters saving and clears the form error.
func (s *State) BeginSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusSaving
	s.formErr = nil
}

// FinishCreate prepends the created record. On failure the edit slot stays
// open and the error is form-scoped.
func (s *State) FinishCreate(c *models.Company, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle
	if err != nil {
		s.formErr = err
		return
	}
	s.held = append([]models.Company{*c}, s.held...)
	s.edit = EditSlot{}
	s.recount(1)
}

// FinishUpdate replaces the held record with the same id. On failure the
// edit slot stays open and the error is form-scoped.
func (s *State) FinishUpdate(c *models.Company, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle
	if err != nil {
		s.formErr = err
		return
	}
	for i := range s.held {
		if s.held[i].ID == c.ID {
			s.held[i] = *c
			break
		}
	}
	if s.current != nil && s.current.ID == c.ID {
		updated := *c
		s.current = &updated
	}
	s.edit = EditSlot{}
}

// FinishDelete removes id from the held set. A NotFound error counts as
// success; any other error is list-scoped and leaves the set alone.
func (s *State) FinishDelete(id uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil && !e.Is(err, e.ErrNotFound) {
		s.listErr = err
		return
	}

	kept := make([]models.Company, 0, len(s.held))
	for _, c := range s.held {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	// A not-found delete of a record off this page was already outside the
	// server's count.
	if err == nil || len(kept) < len(s.held) {
		s.recount(-1)
	}
	s.held = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	if s.edit.Target != nil && s.edit.Target.ID == id {
		s.edit = EditSlot{}
	}
}

// recount moves the remote totals by delta until the next list replaces them.
func (s *State) recount(delta int) {
	if s.mode != ModeRemote {
		return
	}
	s.remote.TotalCount = max(s.remote.TotalCount+delta, 0)
	s.remote.TotalPages = query.TotalPages(s.remote.TotalCount, s.remote.PageSize)
}

// View recomputes the visible page. In local mode a page past the last one
// resets the cursor to 1.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeRemote {
		return View{
			Items:      append([]models.Company(nil), s.held...),
			Pagination: s.remote,
		}
	}

	q := s.builder.Build(s.filters)
	matched := query.Filter(q, s.held)
	totalPages := query.TotalPages(len(matched), q.PageSize)
	if q.Page > totalPages {
		s.filters.Page = 1
		q.Page = 1
	}

	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit(), len(matched))
	return View{
		Items: append([]models.Company{}, matched[start:end]...),
		Pagination: Pagination{
			PageSize:    q.PageSize,
			CurrentPage: q.Page,
			TotalPages:  totalPages,
			TotalCount:  len(matched),
		},
	}
}
