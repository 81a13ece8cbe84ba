package history

import "github.com/hakim/scandeck/internal/models"

// ViewKind tells a renderer which list state to draw. An empty history and
// a failed load are different kinds.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewEmpty
	ViewLoadFailed
	ViewRecords
)

func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewEmpty:
		return "empty"
	case ViewLoadFailed:
		return "load-failed"
	default:
		return "records"
	}
}

// Message is the placeholder text for kinds without rows.
func (k ViewKind) Message() string {
	switch k {
	case ViewLoading:
		return "Loading scan history..."
	case ViewEmpty:
		return "No scans yet"
	case ViewLoadFailed:
		return "Could not load scan history"
	default:
		return ""
	}
}

// View is a snapshot of everything a renderer needs.
type View struct {
	Kind     ViewKind
	Records  []models.ScanRecord
	Selected *models.ScanRecord
	Err      error
}

// View returns a consistent snapshot of the list and selection.
func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := View{Err: a.err}
	switch a.state {
	case StateLoading:
		v.Kind = ViewLoading
	case StateLoadFailed:
		v.Kind = ViewLoadFailed
	default:
		if len(a.records) == 0 {
			v.Kind = ViewEmpty
		} else {
			v.Kind = ViewRecords
			v.Records = append([]models.ScanRecord{}, a.records...)
		}
	}
	if a.selected != nil {
		rec := *a.selected
		v.Selected = &rec
	}
	return v
}
