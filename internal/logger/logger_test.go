package logger

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLevel := logrus.StandardLogger().Out, logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
	})
	return &buf
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSetupWithFile(t *testing.T) {
	prevOut, prevLevel := logrus.StandardLogger().Out, logrus.GetLevel()
	defer func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	}()

	closer, err := Setup(Options{Level: "warn", Format: "json", File: filepath.Join(t.TempDir(), "app.log"), MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer closer.Close()
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %v", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("formatter = %T", logrus.StandardLogger().Formatter)
	}
}

func TestGormLoggerTrace(t *testing.T) {
	buf := captureLogs(t)
	l := NewGormLogger(50 * time.Millisecond)
	ctx := context.Background()
	query := func() (string, int64) { return `SELECT * FROM "buses"`, 1 }

	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	if strings.Contains(buf.String(), "failed") {
		t.Fatalf("record not found logged as failure: %s", buf.String())
	}

	l.Trace(ctx, time.Now(), query, errors.New("connection reset"))
	if !strings.Contains(buf.String(), "SQL query failed") {
		t.Fatalf("missing failure log: %s", buf.String())
	}

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	if !strings.Contains(buf.String(), "Slow SQL query") {
		t.Fatalf("missing slow query log: %s", buf.String())
	}

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	if buf.Len() != 0 {
		t.Fatalf("silent logger wrote: %s", buf.String())
	}
}
