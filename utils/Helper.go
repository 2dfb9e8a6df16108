package utils

import (
	"fmt"
	"log"
	mathRand "math/rand"
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var IsTestMode bool = false
var zapLogger *zap.Logger

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

// USSD response actions understood by the gateway.
const (
	ActionContinue = "CON"
	ActionEnd      = "END"
)

func RandString(n int) string {
	var src = mathRand.NewSource(time.Now().UnixNano())
	b := make([]byte, n)
	// A src.Int63() generates 63 random bits, enough for letterIdxMax characters!
	for i, cache, remain := n-1, src.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = src.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}

	return *(*string)(unsafe.Pointer(&b))
}

// preventing application from crashing abruptly. use defer PanicRecover() on top of the codes that may cause panic
func PanicRecover() {
	if r := recover(); r != nil {
		LogMessage("critical", fmt.Sprintf("Recovered from panic: %v", r), "ussd-service")
	}
}

func InitializeViper(configName string, configType string) {
	// .env is optional, values already exported in the environment win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("godotenv: %v", err)
	}
	viper.SetConfigName(configName)
	if IsTestMode {
		fmt.Println("Running in Test mode...")
		viper.AddConfigPath("../") // Adjust the path for test environment
	} else {
		// Normal mode configuration
		viper.AddConfigPath("/app") // Adjust the path for production environment
		viper.AddConfigPath(".")
	}
	firstLoad := len(viper.AllKeys()) == 0
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType(configType)
	// Map secrets to their config paths
	viper.BindEnv("postgres_db.password", "POSTGRES_DB_PASSWORD")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	if firstLoad {
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal("Error reading config file, ", err)
		}
	} else {
		if err := viper.MergeInConfig(); err != nil {
			log.Fatalf("Error reading config file 2, %s", err)
		}
	}
}

func LogMessage(logLevel string, message string, service string, forcedTraceId ...string) string {
	if zapLogger == nil {
		mode := strings.ToLower(viper.GetString("mode"))
		var err error
		if IsTestMode || mode == "development" {
			zapLogger, err = zap.NewDevelopment()
		} else {
			zapLogger, err = zap.NewProduction()
		}
		if err != nil {
			log.Printf("zap init failed: %v", err)
			zapLogger = zap.NewNop()
		}
	}
	traceId := RandString(12)
	if forcedTraceId != nil && forcedTraceId[0] != "" {
		traceId = forcedTraceId[0]
	}
	fields := []zap.Field{
		zap.String("service", service),
		zap.String("traceId", traceId),
	}
	switch strings.ToLower(logLevel) {
	case "critical", "fatal", "panic":
		zapLogger.Error(message, fields...)
	case "error":
		zapLogger.Error(message, fields...)
	case "warn", "warning":
		zapLogger.Warn(message, fields...)
	case "info":
		zapLogger.Info(message, fields...)
	case "debug":
		zapLogger.Debug(message, fields...)
	default:
		zapLogger.Info(message, fields...)
	}
	return traceId
}

// SyncLogger flushes buffered log entries, call it before the process exits.
func SyncLogger() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}

// USSDResponse writes the plain text body the gateway expects: "CON ..." keeps the
// session open, "END ..." closes it.
func USSDResponse(c *fiber.Ctx, action string, message string) error {
	switch action {
	case ActionContinue, ActionEnd:
	default:
		LogMessage("error", "USSDResponse: Invalid action, action:"+action, "ussd-service")
		action = ActionEnd
	}
	body := action + " " + message
	c.Set("Content-Type", "text/plain")
	c.Set("Cache-Control", "max-age=0")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "-1")
	return c.Status(fiber.StatusOK).SendString(body)
}

func Localize(localizer *i18n.Localizer, messageID string, templateData map[string]interface{}) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		LogMessage("error", "Localize: "+err.Error(), "ussd-service")
		return messageID
	}
	return msg
}

// check if item Exist in string slice
func ContainsString(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
