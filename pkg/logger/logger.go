// Package logger provides the logging system for the warn pipeline.
// It writes to the console with colors, to rotating-free log files, and to
// Discord webhooks, and keeps a separate moderation audit trail so warn,
// ban and reconciliation actions can be replayed without grepping the
// combined log.
package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
	// LevelAudit marks moderation actions (warn issued, penalty applied,
	// external ban reconciled). Audit entries go to the combined log, the
	// moderation trail and the logs webhook.
	LevelAudit
)

type levelMeta struct {
	name       string
	ansi       string
	embedColor int
}

var levelTable = map[LogLevel]levelMeta{
	LevelCritical: {"CRITICAL", "\033[1;31m", 0xFF0000},
	LevelError:    {"ERROR", "\033[31m", 0xFF0000},
	LevelWarn:     {"WARN", "\033[33m", 0xFFFF00},
	LevelSuccess:  {"SUCCESS", "\033[32m", 0x00FF00},
	LevelInfo:     {"INFO", "\033[36m", 0x0000FF},
	LevelDebug:    {"DEBUG", "\033[35m", 0x800080},
	LevelSystem:   {"SYSTEM", "\033[34m", 0x808080},
	LevelAudit:    {"AUDIT", "\033[1;33m", 0xE67E22},
}

// String returns the string representation of the log level
func (l LogLevel) String() string {
	if meta, ok := levelTable[l]; ok {
		return meta.name
	}
	return "UNKNOWN"
}

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string {
	if meta, ok := levelTable[l]; ok {
		return meta.ansi
	}
	return colorReset
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	if meta, ok := levelTable[l]; ok {
		return meta.embedColor
	}
	return 0xFFFFFF
}

const colorReset = "\033[0m"

const webhookUsername = "Lemonbot Warns"

// Logger is the main logging structure
type Logger struct {
	logrus          *logrus.Logger
	errorWebhookURL string
	logsWebhookURL  string
	logFile         *os.File
	errorFile       *os.File
	auditFile       *os.File
	http            *http.Client
	mu              sync.Mutex
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(errorWebhook, logsWebhook string) *Logger {
	once.Do(func() {
		logger = NewLogger(errorWebhook, logsWebhook)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	// Use sync.Once to ensure thread-safe initialization if Init wasn't called
	once.Do(func() {
		logger = NewLogger("", "")
	})
	return logger
}

// NewLogger creates a new Logger instance
func NewLogger(errorWebhook, logsWebhook string) *Logger {
	l := &Logger{
		logrus:          logrus.New(),
		errorWebhookURL: errorWebhook,
		logsWebhookURL:  logsWebhook,
		http:            &http.Client{Timeout: 5 * time.Second},
	}

	// Setup logrus
	l.logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	l.logrus.SetOutput(io.Discard) // We handle output ourselves

	logsDir := filepath.Join(".", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Printf("Error creating logs directory: %v\n", err)
	}

	l.logFile = openLogFile(logsDir, "combined.log")
	l.errorFile = openLogFile(logsDir, "error.log")
	l.auditFile = openLogFile(logsDir, "moderation.log")

	return l
}

func openLogFile(dir, name string) *os.File {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening %s: %v\n", name, err)
		return nil
	}
	return f
}

// log is the internal logging function
func (l *Logger) log(level LogLevel, message string, prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	// Console output with colors
	fmt.Printf("[%s] [%s%s%s] [%s]: %s\n",
		timestamp,
		level.Color(),
		level.String(),
		colorReset,
		prefix,
		message,
	)

	// File output without colors
	fileMsg := fmt.Sprintf("[%s] [%s] [%s]: %s\n",
		timestamp,
		level.String(),
		prefix,
		message,
	)

	if l.logFile != nil {
		l.logFile.WriteString(fileMsg)
	}

	if level <= LevelError && l.errorFile != nil {
		l.errorFile.WriteString(fileMsg)
	}

	if level == LevelAudit && l.auditFile != nil {
		l.auditFile.WriteString(fileMsg)
	}

	go l.sendToWebhook(level, message, prefix)
}

// sendToWebhook sends the log message to the appropriate Discord webhook.
// Critical and error entries go to the error webhook; everything else,
// audit entries included, goes to the logs webhook.
func (l *Logger) sendToWebhook(level LogLevel, message, prefix string) {
	var webhookURL string

	if level <= LevelError && l.errorWebhookURL != "" {
		webhookURL = l.errorWebhookURL
	} else if l.logsWebhookURL != "" && level > LevelError {
		webhookURL = l.logsWebhookURL
	}

	if webhookURL == "" {
		return
	}

	embed := map[string]interface{}{
		"title":       fmt.Sprintf("[%s] %s", level.String(), prefix),
		"description": fmt.Sprintf("```%s```", message),
		"color":       level.DiscordColor(),
		"timestamp":   time.Now().Format(time.RFC3339),
		"footer": map[string]string{
			"text": webhookUsername,
		},
	}

	payload := map[string]interface{}{
		"username": webhookUsername,
		"embeds":   []interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

// Close closes the log files
func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
	if l.errorFile != nil {
		l.errorFile.Close()
	}
	if l.auditFile != nil {
		l.auditFile.Close()
	}
}

// Logging methods

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix)
}

// Error logs an error message
func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix)
}

// Success logs a success message
func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix)
}

// Info logs an info message
func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix)
}

// System logs a system message
func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix)
}

// Audit logs a moderation action
func (l *Logger) Audit(message string, prefix string) {
	l.log(LevelAudit, message, prefix)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

// Error logs an error message using the global logger
func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

// Success logs a success message using the global logger
func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

// Info logs an info message using the global logger
func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

// System logs a system message using the global logger
func System(message string, prefix string) {
	Get().System(message, prefix)
}

// Audit logs a moderation action using the global logger
func Audit(message string, prefix string) {
	Get().Audit(message, prefix)
}
