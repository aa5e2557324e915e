package logging

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogData_FieldsIncludeDataAndTimings(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logData := NewLogData(logger)

	logData.AddData("profileID", "abc")
	stop := logData.AddTiming("applyMs")
	stop()

	fields := logData.Fields()
	assert.Equal(t, "abc", fields["profileID"])
	assert.Contains(t, fields, "applyMs")
}

func TestLogData_AddToExistingTiming(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logData := NewLogData(logger)

	logData.AddToExistingTiming("storeMs")()
	logData.AddToExistingTiming("storeMs")()

	assert.Contains(t, logData.Fields(), "storeMs")
}

func TestGetLogData(t *testing.T) {
	assert.Nil(t, GetLogData(context.Background()))

	logger, _ := test.NewNullLogger()
	logData := NewLogData(logger)
	ctx := WithLogData(context.Background(), logData)
	assert.Same(t, logData, GetLogData(ctx))
}

func TestSetLevel(t *testing.T) {
	logger := SetupLogging()
	require.NoError(t, SetLevel(logger, "warn"))
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.Error(t, SetLevel(logger, "loud"))
}

func TestSetupCLILogging(t *testing.T) {
	var out bytes.Buffer
	logger := SetupCLILogging(&out)
	logger.WithField("profiles", 2).Info("Reconcile.Complete")

	assert.Equal(t, "level=info msg=Reconcile.Complete profiles=2\n", out.String())
}

func TestLoggingWrapper(t *testing.T) {
	logger, hook := test.NewNullLogger()

	handler := LoggingWrapper("Thing", logger, func(w http.ResponseWriter, req *http.Request, logData *LogData) error {
		assert.Same(t, logData, GetLogData(req.Context()))
		logData.AddData("answer", 42)
		if req.Method != http.MethodGet {
			return errors.New("nope")
		}
		w.WriteHeader(http.StatusOK)
		return nil
	})

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/thing", nil))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Handler.Thing.Complete", hook.LastEntry().Message)
	assert.Equal(t, 42, hook.LastEntry().Data["answer"])

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/thing", nil))
	assert.Equal(t, "Handler.Thing.Error", hook.LastEntry().Message)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
