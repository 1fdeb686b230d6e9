package logger

import (
	"fmt"
	"io"
	"reflect"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 20

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

// Init sets the level and the text format shared by every binary.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/02/01 15:04:05",
	})
}

// SetOutput redirects log lines, e.g. to stderr for tools that print results on stdout.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

func log(lvl logrus.Level, object any, message string) {
	if !logrus.IsLevelEnabled(lvl) {
		return
	}
	logrus.StandardLogger().Log(lvl, fmt.Sprintf("|%20s|%-100s", objToString(object), message))
}

func Trace(object any, message string) {
	log(logrus.TraceLevel, object, message)
}

func Tracef(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		log(logrus.TraceLevel, object, fmt.Sprintf(message, args...))
	}
}

func Debug(object any, message string) {
	log(logrus.DebugLevel, object, message)
}

func Debugf(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		log(logrus.DebugLevel, object, fmt.Sprintf(message, args...))
	}
}

func Info(object any, message string) {
	log(logrus.InfoLevel, object, message)
}

func Infof(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.InfoLevel) {
		log(logrus.InfoLevel, object, fmt.Sprintf(message, args...))
	}
}

func Warning(object any, message string) {
	log(logrus.WarnLevel, object, message)
}

func Warningf(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.WarnLevel) {
		log(logrus.WarnLevel, object, fmt.Sprintf(message, args...))
	}
}

func Error(object any, message string) {
	log(logrus.ErrorLevel, object, message)
}

func Errorf(object any, message string, args ...any) {
	log(logrus.ErrorLevel, object, fmt.Sprintf(message, args...))
}

func Fatal(object any, message string) {
	logrus.Fatal(fmt.Sprintf("|%20s|%-100s", objToString(object), message))
}

func Fatalf(object any, message string, args ...any) {
	Fatal(object, fmt.Sprintf(message, args...))
}
