package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ConfigurarLogger deja como logger por defecto uno que escribe a stdout y a <nombre>.log
func ConfigurarLogger(nombre string, nivel string) error {
	logFile, err := os.OpenFile(nombre+".log", os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		return fmt.Errorf("no se pudo abrir el archivo de log: %w", err)
	}

	mw := io.MultiWriter(os.Stdout, logFile)
	slog.SetDefault(NuevoLogger(mw, nombre, nivel))

	return nil
}

// NuevoLogger arma el handler de texto con el nivel pedido, sin tocar el default.
func NuevoLogger(w io.Writer, nombre string, nivel string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParsearNivel(nivel),
	})
	return slog.New(handler).With("modulo", nombre)
}

func ParsearNivel(nivel string) slog.Level {
	switch strings.ToLower(nivel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		fmt.Println("[WAR][Configurar Logger] se ingresó un logLevel rarito, se usará INFO por defecto")
		return slog.LevelInfo
	}
}

func LoggerConFormato(format string, args ...interface{}) {
	slog.Info(fmt.Sprintf(format, args...))
}
