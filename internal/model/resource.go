package model

// ResourceKind — тип бронируемого ресурса.
type ResourceKind string

const (
	ResourceVenue ResourceKind = "venue"
	ResourceCoach ResourceKind = "coach"
)

// ResourceRef идентифицирует площадку или тренера.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

func VenueRef(id string) ResourceRef { return ResourceRef{Kind: ResourceVenue, ID: id} }
func CoachRef(id string) ResourceRef { return ResourceRef{Kind: ResourceCoach, ID: id} }

func (r ResourceRef) String() string { return string(r.Kind) + ":" + r.ID }

// DayKey — ключ блокировки ресурса на конкретную дату.
func (r ResourceRef) DayKey(date string) string { return r.String() + ":" + date }

// Column — колонка, в которой ресурс хранится у брони/холда/сессии.
func (r ResourceRef) Column() string {
	if r.Kind == ResourceCoach {
		return "coach_id"
	}
	return "venue_id"
}
