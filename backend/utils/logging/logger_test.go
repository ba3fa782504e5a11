package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatterFormat(t *testing.T) {
	f := &CustomFormatter{SystemName: "tasks-service"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: X, Description: y",
		Data:    logrus.Fields{"taskId": "abc", "step": "notify"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	line := string(out)

	for _, want := range []string{
		"Date: 2024-01-01, Time: 12:00:00, ",
		"Event Source: tasks-service, ",
		"Event Type: WARNING, ",
		"Message: Event ID: X, Description: y",
		", step: notify, taskId: abc",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("expected trailing newline")
	}
}
