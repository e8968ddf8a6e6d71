package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func bindBody(body string, dst interface{}) map[string]string {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBind(t *testing.T) {
	Setup()

	var ok model.JoinClassRequest
	assert.Nil(t, bindBody(`{"code":"K7QX2M"}`, &ok))
	assert.Equal(t, "K7QX2M", ok.Code)

	var blank model.JoinClassRequest
	fields := bindBody(`{"code":"   "}`, &blank)
	assert.Equal(t, "code must not be blank", fields["code"])

	var reg model.RegisterRequest
	fields = bindBody(`{"name":"Sam","email":"not-an-email","password":"123","role":"ADMIN"}`, &reg)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")
	assert.NotContains(t, fields, "name")

	var typed model.SubmitRequest
	fields = bindBody(`{"assignment_id":"seven"}`, &typed)
	assert.Equal(t, "must be of type int", fields["assignment_id"])

	var broken model.SubmitRequest
	fields = bindBody(`{`, &broken)
	assert.Contains(t, fields, "detail")
}
