package domain

type HospitalType string

const (
	HospitalTypeGovernment HospitalType = "government"
	HospitalTypePrivate    HospitalType = "private"
)

type Hospital struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Image        string       `json:"image,omitempty"`
	Distance     float64      `json:"distance,omitempty"`
	Specialities []string     `json:"specialities,omitempty"`
	Type         HospitalType `json:"type"`
}

// IsPrivate reports whether the hospital charges at booking time.
func (h *Hospital) IsPrivate() bool {
	return h != nil && h.Type == HospitalTypePrivate
}

type Department struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Services []Service `json:"services,omitempty"`
}

type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Doctor struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Title          string  `json:"title,omitempty"`
	Specialization string  `json:"specialization,omitempty"`
	Rating         float64 `json:"rating"`
	ReviewCount    int     `json:"review_count"`
	Bio            string  `json:"bio,omitempty"`
}

type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Page is one page of a remote collection.
type Page[T any] struct {
	Items    []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Complete reports whether the page holds the whole collection. A missing
// total is read as complete.
func (p Page[T]) Complete() bool {
	return p.Total <= len(p.Items)
}
