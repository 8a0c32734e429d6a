package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.AnswersAccepted.WithLabelValues("POLL").Inc()
	c.AnswersAccepted.WithLabelValues("POLL").Inc()
	c.Rejections.WithLabelValues("COMMAND_POST_NEW_QUIZ", "UNAUTHORIZED").Inc()

	if got := testutil.ToFloat64(c.AnswersAccepted.WithLabelValues("POLL")); got != 2 {
		t.Fatalf("expected 2 answers, got %v", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) < 2 {
		t.Fatalf("expected registered families, got %d", len(families))
	}
}
