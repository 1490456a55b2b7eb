// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"time"

	"vidshare/config"
	"vidshare/db"
	"vidshare/middleware"
	"vidshare/security"
	"vidshare/service"
	"vidshare/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type API struct {
	Router   *gin.Engine
	Accounts *service.Accounts
	Catalog  *service.Catalog
	Ingestor *service.Ingestor
	Files    *storage.Local
	Tokens   middleware.TokenDecoder
	JobQueue *service.JobQueue

	opts Options
}

// Deps are the services the handlers call into
type Deps struct {
	Accounts *service.Accounts
	Catalog  *service.Catalog
	Ingestor *service.Ingestor
	Files    *storage.Local
	Tokens   middleware.TokenDecoder
	// Optional, closed by Close when set
	JobQueue *service.JobQueue
}

type Options struct {
	CorsOrigins []string
	// In bytes
	MaxUploadSize int64
	// Lifetime of the auth_token cookie set on login, in seconds
	CookieMaxAge  int
	SecureCookies bool
	// Response cache for the public video listing, nil disables it
	VideosCache persist.CacheStore
	VideosTTL   time.Duration
}

// New builds the router on top of already constructed services
func New(d Deps, o Options) *API {
	a := &API{
		Accounts: d.Accounts,
		Catalog:  d.Catalog,
		Ingestor: d.Ingestor,
		Files:    d.Files,
		Tokens:   d.Tokens,
		JobQueue: d.JobQueue,
		opts:     o,
	}

	if len(o.CorsOrigins) == 0 {
		o.CorsOrigins = []string{"*"}
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     o.CorsOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Range"},
			ExposeHeaders:    []string{"Content-Length", "Content-Range", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString(middleware.RequestIDKey); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString(middleware.UserIDKey); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware(a.Tokens)

	// GET /get_preview|:name	-> Serves media/previews/{name}.png
	router.GET("/get_preview|:name", a.mediaServer(storage.PreviewDir, ".png"))

	// GET /get_video|:name		-> Serves media/videos/{name}.mp4
	router.GET("/get_video|:name", a.mediaServer(storage.VideoDir, ".mp4"))

	// GET /get_pic/:name		-> Serves media/img/{name}
	router.GET("/get_pic/:name", a.mediaServer(storage.ImageDir, ""))

	// POST /register		-> Registers a new user
	router.POST("/register", middleware.BodySizeLimiter(1<<20), a.UserRegister)

	// POST /login			-> Logs in a user and returns an access token
	router.POST("/login", middleware.BodySizeLimiter(1<<20), a.UserLogin)

	// GET /get_user		-> Returns the claims of the caller's token
	router.GET("/get_user", jwt, a.UserClaims)

	// POST /add_comment		-> Adds a comment to a video
	router.POST("/add_comment", jwt, middleware.BodySizeLimiter(1<<20), a.CommentAdd)

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	users := main.Group("/user", jwt)
	{
		// GET /api/user/videos		-> Returns the videos uploaded by the caller
		users.GET("/videos", a.UserVideos)

		// GET /api/user/profile	-> Returns the caller's username and email
		users.GET("/profile", a.UserProfile)

		// POST /api/user/upload	-> Uploads a video and extracts its preview
		users.POST("/upload", middleware.BodySizeLimiter(o.MaxUploadSize), a.VideoUpload)
	}

	videos := main.Group("/videos")
	{
		list := []gin.HandlerFunc{a.VideoList}
		if o.VideosCache != nil && o.VideosTTL > 0 {
			list = append([]gin.HandlerFunc{cache.CacheByRequestURI(o.VideosCache, o.VideosTTL)}, list...)
		}

		// GET /api/videos		-> Lists every video with creator and comments
		videos.GET("", list...)

		// DELETE /api/videos/:id	-> Deletes a video by its ID
		videos.DELETE("/:id", jwt, a.VideoDelete)
	}

	return a
}

// NewRouter wires every dependency from the configuration and builds the router
func NewRouter(cfg *config.Config) (*API, error) {
	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	store := db.NewStore(conn)

	hasher, err := security.NewHasher(cfg.Security.PasswordHash)
	if err != nil {
		return nil, err
	}

	codec := security.NewJWTCodec(cfg.JWT.Secret, cfg.JWT.Expiry)

	files, err := storage.NewLocal(cfg.Media.Root)
	if err != nil {
		return nil, err
	}

	queue := service.NewJobQueue(cfg.FFmpeg.Workers, cfg.FFmpeg.MaxJobs)
	queue.StartWorkerPool()

	extractor := service.NewFFmpegExtractor(queue, cfg.FFmpeg.Path, cfg.FFprobe.Path, cfg.FFmpeg.Timeout)

	opts := service.IngestOptions{
		PreviewOffset: cfg.Preview.Offset,
		AllowedTypes:  cfg.Upload.AllowedTypes,
	}

	if len(opts.AllowedTypes) == 0 {
		zap.L().Warn("No upload.allowed_types specified, any file type will be accepted")
	}

	switch cfg.Storage.Mirror {
	case "s3":
		b, err := storage.NewBucket(context.Background(), storage.BucketOptions{
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretAccessKey,
			Bucket:    cfg.AWS.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}
		opts.Mirror = b
	case "r2":
		b, err := storage.NewR2(context.Background(),
			cfg.Cloudflare.AccountID,
			cfg.Cloudflare.AccessKeyID,
			cfg.Cloudflare.SecretAccessKey,
			cfg.Cloudflare.Bucket,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize R2 client, %w", err)
		}
		opts.Mirror = b
	}

	o := Options{
		CorsOrigins:   cfg.Host.CorsOrigins,
		MaxUploadSize: cfg.Upload.MaxBytes(),
		CookieMaxAge:  int(cfg.JWT.Expiry / time.Second),
		SecureCookies: cfg.Host.SSL.Enabled,
		VideosTTL:     cfg.Cache.VideosTTL,
	}

	if o.VideosTTL > 0 {
		o.VideosCache, err = newCacheStore(cfg.Cache.RedisURL, o.VideosTTL)
		if err != nil {
			return nil, err
		}
	}

	return New(Deps{
		Accounts: service.NewAccounts(store, hasher, codec),
		Catalog:  service.NewCatalog(store),
		Ingestor: service.NewIngestor(store, files, extractor, opts),
		Files:    files,
		Tokens:   codec,
		JobQueue: queue,
	}, o), nil
}

func newCacheStore(redisURL string, ttl time.Duration) (persist.CacheStore, error) {
	if redisURL == "" {
		return persist.NewMemoryStore(ttl), nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache.redis_url, %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return persist.NewRedisStore(client), nil
}

// Close stops the ffmpeg workers after the queued jobs are done
func (a *API) Close() {
	if a.JobQueue != nil {
		a.JobQueue.Close()
	}
}
