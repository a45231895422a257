package query_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/medbrief/pkg/query"
)

func timelineProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "medical_timeline", "t").
		Project("id", "ID").
		Project("summary_id", "SummaryID").
		Project("event_date", "EventDate").
		Project("event_type", "EventType").
		Join("JOIN public.clinical_summaries s ON s.id = t.summary_id").
		ProjectJoined("s", "patient_name", "PatientName")
}

func TestBuildPageWithJoin(t *testing.T) {
	eventType := "imaging"
	search := "doe"

	b := query.NewBuilder(timelineProjection(), query.SortField{Field: "EventDate", Descending: true}).
		WhereEquals("EventType", &eventType).
		WhereSearch(&search, "PatientName")

	sql, args := b.BuildPage(2, 10)

	want := "SELECT t.id, t.summary_id, t.event_date, t.event_type, s.patient_name " +
		"FROM public.medical_timeline t JOIN public.clinical_summaries s ON s.id = t.summary_id " +
		"WHERE t.event_type = $1 AND (s.patient_name ILIKE $2) " +
		"ORDER BY t.event_date DESC LIMIT 10 OFFSET 10"

	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 2 || args[1] != "%doe%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildCountSkipsNilFilters(t *testing.T) {
	var eventType *string

	b := query.NewBuilder(timelineProjection()).WhereEquals("EventType", eventType)
	sql, args := b.BuildCount()

	want := "SELECT COUNT(*) FROM public.medical_timeline t JOIN public.clinical_summaries s ON s.id = t.summary_id"
	if sql != want {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestParseSortFields(t *testing.T) {
	fields := query.ParseSortFields("PatientName, -CreatedAt,")
	if len(fields) != 2 {
		t.Fatalf("fields = %v", fields)
	}
	if fields[0].Field != "PatientName" || fields[0].Descending {
		t.Errorf("fields[0] = %+v", fields[0])
	}
	if fields[1].Field != "CreatedAt" || !fields[1].Descending {
		t.Errorf("fields[1] = %+v", fields[1])
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(timelineProjection()).BuildSingle("ID", "abc")
	want := "SELECT t.id, t.summary_id, t.event_date, t.event_type, s.patient_name " +
		"FROM public.medical_timeline t JOIN public.clinical_summaries s ON s.id = t.summary_id WHERE t.id = $1"
	if sql != want {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}
}

func TestOrderByIgnoresUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		sort string
		want string
	}{
		{"view name", "-EventDate", " ORDER BY t.event_date DESC"},
		{"column name", "event_type,-event_date", " ORDER BY t.event_type ASC, t.event_date DESC"},
		{"injection falls back to default", "id; DROP TABLE prompts--", " ORDER BY t.event_date DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := query.NewBuilder(timelineProjection(), query.SortField{Field: "EventDate", Descending: true}).
				OrderByFields(query.ParseSortFields(tt.sort)).
				Build()

			if !strings.HasSuffix(sql, tt.want) {
				t.Errorf("sql = %s\nwant suffix %q", sql, tt.want)
			}
		})
	}
}

func TestWhereRangeNumbersAfterEquals(t *testing.T) {
	summaryID := "s-1"
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var to *time.Time

	sql, args := query.NewBuilder(timelineProjection()).
		WhereEquals("SummaryID", &summaryID).
		WhereRange("EventDate", &from, to).
		WhereContains("PatientName", &summaryID).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.medical_timeline t JOIN public.clinical_summaries s ON s.id = t.summary_id " +
		"WHERE t.summary_id = $1 AND t.event_date >= $2 AND s.patient_name ILIKE $3"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 3 || args[2] != "%s-1%" {
		t.Errorf("args = %v", args)
	}
}
