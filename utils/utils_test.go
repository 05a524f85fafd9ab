package utils_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasa-cafe/database/testdb"
	"rasa-cafe/model"
	"rasa-cafe/utils"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTokenRoundTrip(t *testing.T) {
	user := &model.User{ID: "u-1", Name: "Sara", Role: model.RoleBarista}

	token, err := utils.GenerateToken(secret, user, false)
	require.NoError(t, err)

	claims, err := utils.ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.ID)
	assert.Equal(t, model.RoleBarista, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	long, err := utils.GenerateToken(secret, user, true)
	require.NoError(t, err)
	claims, err = utils.ValidateToken(secret, long)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = utils.ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.Claims{
		ID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = utils.ValidateToken(secret, signed)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hashed, err := utils.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hashed)
	assert.True(t, utils.CheckPassword(hashed, "hunter2"))
	assert.False(t, utils.CheckPassword(hashed, "hunter3"))
}

func TestMiddleware(t *testing.T) {
	db := testdb.New(t)
	barista := model.User{Name: "Barista", Email: "b@example.com", Password: "x", Role: model.RoleBarista}
	customer := model.User{Name: "Customer", Email: "c@example.com", Password: "x"}
	require.NoError(t, db.Create(&barista).Error)
	require.NoError(t, db.Create(&customer).Error)

	r := gin.New()
	r.GET("/staff", utils.Protect(db, secret), utils.Can(model.StaffRoles...), func(c *gin.Context) {
		user, _ := utils.CurrentUser(c)
		c.String(http.StatusOK, user.Name)
	})
	r.GET("/maybe", utils.OptionalUser(db, secret), func(c *gin.Context) {
		if user, ok := utils.CurrentUser(c); ok {
			c.String(http.StatusOK, user.Name)
			return
		}
		c.String(http.StatusOK, "guest")
	})

	tokenFor := func(u *model.User) string {
		token, err := utils.GenerateToken(secret, u, false)
		require.NoError(t, err)
		return token
	}
	do := func(path string, setup func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if setup != nil {
			setup(req)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/staff", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do("/staff", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: tokenFor(&barista)})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Barista", w.Body.String())

	w = do("/staff", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tokenFor(&barista))
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("/staff", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tokenFor(&customer))
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	ghost := &model.User{ID: "ghost", Role: model.RoleAdmin}
	w = do("/staff", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tokenFor(ghost))
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do("/maybe", nil)
	assert.Equal(t, "guest", w.Body.String())
	w = do("/maybe", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, "guest", w.Body.String())
	w = do("/maybe", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: tokenFor(&customer)})
	})
	assert.Equal(t, "Customer", w.Body.String())
}

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()

	url, err := utils.SaveImage(uploadHeader(t, "wide.PNG", pngBytes(t, 1600, 400)), dir)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/images/product-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	f, err := os.Open(filepath.Join(dir, strings.TrimPrefix(url, "/images/")))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	_, err = utils.SaveImage(uploadHeader(t, "menu.gif", []byte("GIF89a")), dir)
	assert.ErrorIs(t, err, utils.ErrInvalidFileType)

	_, err = utils.SaveImage(uploadHeader(t, "fake.jpg", []byte("not a jpeg")), dir)
	assert.ErrorIs(t, err, utils.ErrInvalidFileType)

	big := uploadHeader(t, "big.png", pngBytes(t, 10, 10))
	big.Size = utils.MaxImageSize + 1
	_, err = utils.SaveImage(big, dir)
	assert.ErrorIs(t, err, utils.ErrImageTooLarge)
}
