// internal/domain/models/metrics.go
package models

// Metric field names as stored in Mongo and exposed over the API.
const (
	MetricPreRegistration = "pre_registration"
	MetricVOSCompleted    = "vos_completed"
	MetricGroupFormation  = "group_formation"
	MetricIdeaSubmissions = "idea_submissions"
)

// MetricFields lists the four counters in their canonical order.
var MetricFields = []string{
	MetricPreRegistration,
	MetricVOSCompleted,
	MetricGroupFormation,
	MetricIdeaSubmissions,
}

// IsMetricField reports whether name is one of the four counters.
func IsMetricField(name string) bool {
	for _, f := range MetricFields {
		if f == name {
			return true
		}
	}
	return false
}

// Metrics holds the four monotonically increasing activity counters.
// It is embedded inline in Organization and in every report row.
type Metrics struct {
	PreRegistration int64 `bson:"pre_registration" json:"pre_registration"`
	VOSCompleted    int64 `bson:"vos_completed" json:"vos_completed"`
	GroupFormation  int64 `bson:"group_formation" json:"group_formation"`
	IdeaSubmissions int64 `bson:"idea_submissions" json:"idea_submissions"`
}

// Metric returns the counter named by field, or 0 for an unknown name.
func (m Metrics) Metric(field string) int64 {
	switch field {
	case MetricPreRegistration:
		return m.PreRegistration
	case MetricVOSCompleted:
		return m.VOSCompleted
	case MetricGroupFormation:
		return m.GroupFormation
	case MetricIdeaSubmissions:
		return m.IdeaSubmissions
	}
	return 0
}

// Add returns the column-wise sum of m and o.
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		PreRegistration: m.PreRegistration + o.PreRegistration,
		VOSCompleted:    m.VOSCompleted + o.VOSCompleted,
		GroupFormation:  m.GroupFormation + o.GroupFormation,
		IdeaSubmissions: m.IdeaSubmissions + o.IdeaSubmissions,
	}
}
