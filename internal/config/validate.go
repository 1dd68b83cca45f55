package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError - ошибка одного поля конфигурации.
type ValidationError struct {
	Field   string
	Message string
}

// Error реализует интерфейс error.
func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors - набор ошибок валидации.
type ValidationErrors []ValidationError

// Error реализует интерфейс error.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate проверяет конфигурацию и возвращает все найденные ошибки.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Database.URL == "" {
		errs = append(errs, ValidationError{"database.url", "must not be empty"})
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, ValidationError{"worker.concurrency", fmt.Sprintf("must be at least 1, got %d", c.Worker.Concurrency)})
	}
	if c.Worker.PollInterval <= 0 {
		errs = append(errs, ValidationError{"worker.poll_interval", "must be positive"})
	}
	if c.Worker.BatchSize < 1 {
		errs = append(errs, ValidationError{"worker.batch_size", "must be at least 1"})
	}
	if c.Worker.TaskTimeout < 0 {
		errs = append(errs, ValidationError{"worker.task_timeout", "must not be negative"})
	}
	if c.RabbitMQ.ReconnectMin <= 0 {
		errs = append(errs, ValidationError{"rabbitmq.reconnect_min", "must be positive"})
	}
	if c.RabbitMQ.ReconnectMax < c.RabbitMQ.ReconnectMin {
		errs = append(errs, ValidationError{"rabbitmq.reconnect_max", fmt.Sprintf("must not be less than reconnect_min (%s)", c.RabbitMQ.ReconnectMin)})
	}
	if c.Worker.WorkDir == "" {
		errs = append(errs, ValidationError{"worker.work_dir", "must not be empty"})
	}
	if c.API.Addr == "" {
		errs = append(errs, ValidationError{"api.addr", "must not be empty"})
	}
	if c.API.MaxReportSize < 1 {
		errs = append(errs, ValidationError{"api.max_report_size", "must be positive"})
	}
	if c.Cleaner.Schedule != "" {
		if _, err := cronParser.Parse(c.Cleaner.Schedule); err != nil {
			errs = append(errs, ValidationError{"cleaner.schedule", err.Error()})
		}
		errs = append(errs, c.validateStaleReset()...)
	}

	return errs
}

// validateStaleReset: при включённом cleaner нужно stale_after > task_timeout > 0.
func (c *Config) validateStaleReset() []ValidationError {
	var errs []ValidationError

	if c.Cleaner.StaleAfter <= 0 {
		errs = append(errs, ValidationError{"cleaner.stale_after", "must be positive"})
	}
	if c.Worker.TaskTimeout == 0 {
		errs = append(errs, ValidationError{"worker.task_timeout", "must be set while the cleaner is enabled"})
		return errs
	}
	if c.Cleaner.StaleAfter > 0 && c.Worker.TaskTimeout > 0 && c.Cleaner.StaleAfter <= c.Worker.TaskTimeout {
		errs = append(errs, ValidationError{"cleaner.stale_after", fmt.Sprintf("must be greater than worker.task_timeout (%s), got %s", c.Worker.TaskTimeout, c.Cleaner.StaleAfter)})
	}
	return errs
}
