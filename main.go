package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/cman/api"
	api_i "github.com/beka-birhanu/cman/api/i"
	matchapi "github.com/beka-birhanu/cman/api/match"
	"github.com/beka-birhanu/cman/api/watch"
	"github.com/beka-birhanu/cman/config"
	"github.com/beka-birhanu/cman/game/maze"
	logger "github.com/beka-birhanu/cman/infrastruture/log"
	"github.com/beka-birhanu/cman/infrastruture/repo"
	"github.com/beka-birhanu/cman/infrastruture/scoreboard"
	"github.com/beka-birhanu/cman/service"
	"github.com/beka-birhanu/cman/service/i"
	"github.com/beka-birhanu/cman/udp"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// server holds the dependencies wired at startup.
type server struct {
	cfg         config.Config
	appLogger   *logger.Logger
	gameMap     *maze.Map
	socket      *udp.SocketManager
	mongoClient *mongo.Client
	matchRepo   *repo.MatchRepo
	redisClient *redis.Client
	scores      *scoreboard.RedisScoreboard
	hub         *watch.Hub
	match       *service.MatchServer
	router      *api.Router
}

func (s *server) initFlags() {
	port := flag.Int("port", s.cfg.Port, "UDP port to listen on")
	mapPath := flag.String("map", s.cfg.MapPath, "path of the map file")
	tick := flag.Duration("tick", s.cfg.TickPeriod, "server tick period")
	flag.Parse()

	s.cfg.Port = *port
	s.cfg.MapPath = *mapPath
	s.cfg.TickPeriod = *tick
}

func (s *server) initLogger() {
	var err error
	s.appLogger, err = logger.New("SERVER", config.ColorBlue, os.Stdout,
		logger.WithFile(s.cfg.LogFile),
		logger.WithLevel(s.cfg.LogLevel),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Creating logger: %v\n", err)
		os.Exit(1)
	}
}

func (s *server) newLogger(name, color string) i.Logger {
	l, err := logger.New(name, color, os.Stdout, logger.WithFile(s.cfg.LogFile), logger.WithLevel(s.cfg.LogLevel))
	if err != nil {
		s.appLogger.Error(fmt.Sprintf("Creating %s logger: %v", name, err))
		os.Exit(1)
	}
	return l
}

func (s *server) initMap() {
	var err error
	s.gameMap, err = maze.LoadFile(s.cfg.MapPath)
	if err != nil {
		s.appLogger.Error(fmt.Sprintf("Loading map %s: %v", s.cfg.MapPath, err))
		os.Exit(1)
	}
	s.appLogger.Info(fmt.Sprintf("Map %s loaded (%dx%d)", s.cfg.MapPath, s.gameMap.Height(), s.gameMap.Width()))
}

func (s *server) initSocket() {
	host, err := netip.ParseAddr(s.cfg.Host)
	if err != nil {
		s.appLogger.Error(fmt.Sprintf("Parsing host %q: %v", s.cfg.Host, err))
		os.Exit(1)
	}
	if s.cfg.Port <= 0 || s.cfg.Port > 0xFFFF {
		s.appLogger.Error(fmt.Sprintf("Invalid port %d", s.cfg.Port))
		os.Exit(1)
	}

	s.socket, err = udp.Listen(netip.AddrPortFrom(host, uint16(s.cfg.Port)),
		udp.ServerWithLogger(s.newLogger("UDP", config.ColorCyan)),
	)
	if err != nil {
		s.appLogger.Error(fmt.Sprintf("Binding UDP socket: %v", err))
		os.Exit(1)
	}
	s.appLogger.Info(fmt.Sprintf("Listening on udp %s", s.socket.LocalAddr()))
}

func (s *server) initMongo(ctx context.Context) {
	if s.cfg.MongoURI == "" {
		s.appLogger.Info("MONGO_URI not set, match history disabled")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var err error
	s.mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.MongoURI))
	if err != nil {
		s.appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = s.mongoClient.Ping(ctx, nil); err != nil {
		s.appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}

	s.matchRepo = repo.NewMatchRepo(s.mongoClient, s.cfg.MongoDB, "matches")
	if err = s.matchRepo.EnsureIndexes(ctx); err != nil {
		s.appLogger.Warning(fmt.Sprintf("Creating match indexes: %v", err))
	}
	s.appLogger.Info("Match repository initialized")
}

func (s *server) initRedis(ctx context.Context) {
	if s.cfg.RedisAddr == "" {
		s.appLogger.Info("REDIS_ADDR not set, scoreboard disabled")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	s.redisClient = redis.NewClient(&redis.Options{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPassword,
	})
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}

	s.scores = scoreboard.NewRedisScoreboard(s.redisClient, &scoreboard.Options{Prefix: s.cfg.RedisPrefix})
	s.appLogger.Info("Scoreboard initialized")
}

func (s *server) initMatchServer() {
	var recorders service.Recorders
	if s.matchRepo != nil {
		recorders = append(recorders, s.matchRepo)
	}
	if s.scores != nil {
		recorders = append(recorders, s.scores)
	}

	s.hub = watch.NewHub(s.newLogger("WATCH", config.ColorMagenta))

	cfg := &service.Config{
		Socket:      s.socket,
		Map:         s.gameMap,
		Logger:      s.newLogger("MATCH", config.ColorGreen),
		Observers:   []i.MatchObserver{s.hub},
		TickPeriod:  s.cfg.TickPeriod,
		IdleTimeout: s.cfg.IdleTimeout,
	}
	if len(recorders) > 0 {
		cfg.Recorder = recorders
	}

	var err error
	s.match, err = service.NewMatchServer(cfg)
	if err != nil {
		s.appLogger.Error(fmt.Sprintf("Creating match server: %v", err))
		os.Exit(1)
	}
	s.appLogger.Info(fmt.Sprintf("Match %s initialized", s.match.ID()))
}

func (s *server) initRouter() {
	if s.cfg.HTTPAddr == "" {
		return
	}
	gin.SetMode(s.cfg.GinMode)

	cfg := matchapi.Config{
		Status:       s.match,
		DefaultLimit: s.cfg.HistoryLimit,
	}
	// Leave the interfaces nil rather than holding typed nil pointers.
	if s.matchRepo != nil {
		cfg.History = s.matchRepo
	}
	if s.scores != nil {
		cfg.Scoreboard = s.scores
	}

	s.router = api.NewRouter(api.Config{
		Addr:        s.cfg.HTTPAddr,
		BaseURL:     "/api",
		Controllers: []api_i.Controller{matchapi.NewController(cfg), s.hub},
	})
	s.appLogger.Info(fmt.Sprintf("Router initialized on %s", s.cfg.HTTPAddr))
}

func (s *server) close() {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if s.hub != nil {
		s.hub.Close()
	}
	if s.socket != nil {
		_ = s.socket.Close()
	}
	if s.mongoClient != nil {
		_ = s.mongoClient.Disconnect(ctx)
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	_ = s.appLogger.Sync()
}

func main() {
	s := &server{cfg: config.Load()}
	s.initFlags()
	s.initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.initMap()
	s.initSocket()
	s.initMongo(ctx)
	s.initRedis(ctx)
	s.initMatchServer()
	s.initRouter()
	defer s.close()

	httpCtx, stopHTTP := context.WithCancel(ctx)
	httpDone := make(chan struct{})
	go func() {
		defer close(httpDone)
		if s.router == nil {
			return
		}
		if err := s.router.Run(httpCtx); err != nil {
			s.appLogger.Error(fmt.Sprintf("HTTP server: %v", err))
		}
	}()

	err := s.match.Run(ctx)
	stopHTTP()
	<-httpDone

	switch {
	case err == nil:
		s.appLogger.Info("Match over, shutting down")
	case errors.Is(err, context.Canceled):
		s.appLogger.Info("Interrupted, shutting down")
	default:
		s.appLogger.Error(fmt.Sprintf("Socket failure: %v", err))
	}
}
