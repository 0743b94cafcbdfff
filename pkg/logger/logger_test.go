package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/mathapi/pkg/logger"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	Describe("New", func() {
		It("should create a stdout logger", func() {
			Expect(logger.New("info", true, "dev")).NotTo(BeNil())
		})
	})

	Describe("NewWithWriter", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
		})

		DescribeTable("level handling",
			func(level string, enabled, disabled slog.Level) {
				log := logger.NewWithWriter(buf, level, false, "dev")
				Expect(log.Enabled(ctx, enabled)).To(BeTrue())
				Expect(log.Enabled(ctx, disabled)).To(BeFalse())
			},
			Entry("debug", "debug", slog.LevelDebug, slog.LevelDebug-1),
			Entry("info", "info", slog.LevelInfo, slog.LevelDebug),
			Entry("warn", "warn", slog.LevelWarn, slog.LevelInfo),
			Entry("error", "error", slog.LevelError, slog.LevelWarn),
			Entry("mixed case", "WARN", slog.LevelWarn, slog.LevelInfo),
			Entry("unknown defaults to info", "verbose", slog.LevelInfo, slog.LevelDebug),
		)

		It("should write JSON records in prod", func() {
			log := logger.NewWithWriter(buf, "info", false, "prod")
			log.Info("hello", slog.String("endpoint", "mean"))

			var record map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			Expect(record).To(HaveKeyWithValue("msg", "hello"))
			Expect(record).To(HaveKeyWithValue("environment", "prod"))
			Expect(record).To(HaveKeyWithValue("endpoint", "mean"))
		})

		It("should write text records elsewhere", func() {
			log := logger.NewWithWriter(buf, "info", false, "staging")
			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring("msg=hello"))
			Expect(buf.String()).To(ContainSubstring("environment=staging"))
		})
	})
})
