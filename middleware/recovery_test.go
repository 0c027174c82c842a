package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})
	router.GET("/normal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	t.Run("panic recovery", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Internal server error") {
			t.Error("Expected error message in response")
		}
	})

	t.Run("normal request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/normal", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestRecoveryBrokenPipe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Recovery())
	router.GET("/pipe", func(c *gin.Context) {
		panic(&net.OpError{
			Op:  "write",
			Err: os.NewSyscallError("write", syscall.EPIPE),
		})
	})

	req := httptest.NewRequest("GET", "/pipe", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// No 500 body is written when the client is already gone.
	if strings.Contains(w.Body.String(), "Internal server error") {
		t.Error("Broken pipe should not produce an error response")
	}
}

func TestIsBrokenPipe(t *testing.T) {
	tests := []struct {
		name string
		err  any
		want bool
	}{
		{"plain string", "boom", false},
		{"broken pipe", &net.OpError{Err: os.NewSyscallError("write", syscall.EPIPE)}, true},
		{"connection reset", &net.OpError{Err: os.NewSyscallError("write", syscall.ECONNRESET)}, true},
		{"other op error", &net.OpError{Err: os.NewSyscallError("write", syscall.EINVAL)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBrokenPipe(tt.err); got != tt.want {
				t.Errorf("isBrokenPipe() = %v, want %v", got, tt.want)
			}
		})
	}
}
