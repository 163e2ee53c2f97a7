package reviewcontroller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/testutil"
	"github.com/Ashish5180/vibe-bites/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func reviewReq(productID uint, rating int) CreateReviewRequest {
	return CreateReviewRequest{
		ProductID: productID,
		Rating:    rating,
		Title:     "Crunchy and fresh",
		Comment:   "Would happily order this again.",
	}
}

func productRating(t *testing.T, db *gorm.DB, id uint) (float64, int) {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Rating, p.ReviewCount
}

func TestAddReviewRunningMean(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 5})
	ctx := context.Background()

	ratings := []int{5, 4, 2}
	var last float64
	for i, r := range ratings {
		u := testutil.CreateUser(t, db, fmt.Sprintf("u%d@test.dev", i), models.RoleUser)
		_, got, err := AddReview(ctx, db, u, reviewReq(p.ID, r))
		require.NoError(t, err)
		last = got
	}

	rating, count := productRating(t, db, p.ID)
	assert.InDelta(t, 11.0/3.0, rating, 1e-9)
	assert.InDelta(t, rating, last, 1e-9)
	assert.Equal(t, 3, count)
}

func TestAddReviewOncePerUser(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 5})
	u := testutil.CreateUser(t, db, "asha@test.dev", models.RoleUser)
	ctx := context.Background()

	review, _, err := AddReview(ctx, db, u, reviewReq(p.ID, 4))
	require.NoError(t, err)

	_, _, err = AddReview(ctx, db, u, reviewReq(p.ID, 5))
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	// A deleted review still blocks a second one.
	require.NoError(t, DeleteReview(ctx, db, u, review.ID))
	_, _, err = AddReview(ctx, db, u, reviewReq(p.ID, 5))
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, _, err = AddReview(ctx, db, u, reviewReq(9999, 5))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestEditAndDeleteRecompute(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 5})
	asha := testutil.CreateUser(t, db, "asha@test.dev", models.RoleUser)
	ravi := testutil.CreateUser(t, db, "ravi@test.dev", models.RoleUser)
	ctx := context.Background()

	a, _, err := AddReview(ctx, db, asha, reviewReq(p.ID, 5))
	require.NoError(t, err)
	_, _, err = AddReview(ctx, db, ravi, reviewReq(p.ID, 3))
	require.NoError(t, err)

	one := 1
	_, err = UpdateReview(ctx, db, asha, a.ID, UpdateReviewRequest{Rating: &one})
	require.NoError(t, err)
	rating, count := productRating(t, db, p.ID)
	assert.InDelta(t, 2.0, rating, 1e-9)
	assert.Equal(t, 2, count)

	_, err = UpdateReview(ctx, db, ravi, a.ID, UpdateReviewRequest{Rating: &one})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	require.NoError(t, DeleteReview(ctx, db, asha, a.ID))
	rating, count = productRating(t, db, p.ID)
	assert.InDelta(t, 3.0, rating, 1e-9)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, DeleteReview(ctx, db, asha, a.ID), ErrReviewNotFound)
}

func TestRatingIsMeanProperty(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := 0

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("after N reviews rating is their mean and count is N", prop.ForAll(
		func(ratings []int) bool {
			p := testutil.CreateProduct(t, db, fmt.Sprintf("Snack %d", users), "Bites",
				testutil.Tier{Size: "100g", Price: "10", Stock: 1})
			sum := 0
			for _, r := range ratings {
				users++
				u := testutil.CreateUser(t, db, fmt.Sprintf("p%d@test.dev", users), models.RoleUser)
				if _, _, err := AddReview(ctx, db, u, reviewReq(p.ID, r)); err != nil {
					return false
				}
				sum += r
			}
			rating, count := productRating(t, db, p.ID)
			return count == len(ratings) && math.Abs(rating-float64(sum)/float64(len(ratings))) < 1e-9
		},
		gen.IntRange(1, 8).FlatMap(func(n interface{}) gopter.Gen {
			return gen.SliceOfN(n.(int), gen.IntRange(1, 5))
		}, reflect.TypeOf([]int{})),
	))

	properties.TestingRun(t)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func router(db *gorm.DB, user *models.User) *gin.Engine {
	log := zap.NewNop()
	r := gin.New()
	r.GET("/reviews/product/:productId", GetProductReviews(db, log))
	authed := r.Group("/", func(c *gin.Context) {
		auth.SetUser(c, user)
		c.Next()
	})
	authed.POST("/reviews", CreateReview(db, log))
	authed.PUT("/reviews/:id", EditReview(db, log))
	authed.DELETE("/reviews/:id", RemoveReview(db, log))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestReviewHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Masala Chips", "Chips", testutil.Tier{Size: "100g", Price: "60", Stock: 5})
	u := testutil.CreateUser(t, db, "asha@test.dev", models.RoleUser)
	r := router(db, u)
	pid := strconv.FormatUint(uint64(p.ID), 10)

	status, _ := do(t, r, http.MethodPost, "/reviews", gin.H{"productId": p.ID, "rating": 6, "title": "ok", "comment": "short"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := do(t, r, http.MethodPost, "/reviews", gin.H{
		"productId": p.ID, "rating": 4, "title": "Great crunch", "comment": "Perfect tea time snack.",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		Review           reviewView `json:"review"`
		NewProductRating float64    `json:"newProductRating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Test User", created.Review.UserName)
	assert.Equal(t, 4.0, created.NewProductRating)

	status, env = do(t, r, http.MethodPost, "/reviews", gin.H{
		"productId": p.ID, "rating": 5, "title": "Great crunch", "comment": "Perfect tea time snack.",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You have already reviewed this product", env.Message)

	status, env = do(t, r, http.MethodGet, "/reviews/product/"+pid, nil)
	require.Equal(t, http.StatusOK, status)
	var listed struct {
		Reviews       []reviewView `json:"reviews"`
		ProductRating float64      `json:"productRating"`
		TotalReviews  int          `json:"totalReviews"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Reviews, 1)
	assert.Equal(t, 4.0, listed.ProductRating)
	assert.Equal(t, 1, listed.TotalReviews)

	rid := strconv.FormatUint(uint64(created.Review.ID), 10)
	status, _ = do(t, r, http.MethodPut, "/reviews/"+rid, gin.H{"rating": 2})
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, r, http.MethodDelete, "/reviews/"+rid, nil)
	require.Equal(t, http.StatusOK, status)

	_, env = do(t, r, http.MethodGet, "/reviews/product/"+pid, nil)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Empty(t, listed.Reviews)
	assert.Equal(t, 0, listed.TotalReviews)

	status, _ = do(t, r, http.MethodGet, "/reviews/product/9999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
