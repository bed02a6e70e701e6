package web

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"livescore-service/config"
	"livescore-service/logger"
	"livescore-service/services"
)

// Server 轻量 HTTP 层,把状态存储的投影暴露给轮询消费方 (vMix 等)
type Server struct {
	config   *config.Config
	store    *services.CourtStateStore
	history  *services.EventHistory
	matches  *services.MatchStore // 可能为 nil (未配置数据库)
	rooms    *services.RoomSubscriptionManager
	socket   *services.SocketClient
	registry *services.CourtRegistry

	startedAt  time.Time
	httpServer *http.Server
}

// NewServer 创建 HTTP 服务器
func NewServer(cfg *config.Config, store *services.CourtStateStore, history *services.EventHistory,
	matches *services.MatchStore, rooms *services.RoomSubscriptionManager,
	socket *services.SocketClient, registry *services.CourtRegistry) *Server {
	return &Server{
		config:    cfg,
		store:     store,
		history:   history,
		matches:   matches,
		rooms:     rooms,
		socket:    socket,
		registry:  registry,
		startedAt: time.Now(),
	}
}

// Start 启动 HTTP 服务器 (阻塞)
func (s *Server) Start() error {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleIndex).Methods("GET")
	router.HandleFunc("/listpertandingan", s.handleList).Methods("GET")
	router.HandleFunc("/pertandingan", s.handleList).Methods("GET")
	router.HandleFunc("/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/events", s.handleEvents).Methods("GET")
	router.HandleFunc("/lapangan", s.handleLapangan).Methods("GET")
	router.HandleFunc("/debug", s.handleDebug).Methods("GET")
	router.HandleFunc("/vmix", s.handleVmix).Methods("GET")
	router.HandleFunc("/vmix-flat", s.handleVmixFlat).Methods("GET")
	router.HandleFunc("/vmix-xml", s.handleVmixXML).Methods("GET")
	router.HandleFunc("/btp", s.handleBTP).Methods("GET")
	router.HandleFunc("/clear", s.handleClear).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Stop 优雅关闭
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(data)
}

// notFoundCourt 未知场地统一返回 404 + 当前已知场地列表
func (s *Server) notFoundCourt(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"success":   false,
		"error":     "Lapangan not found",
		"available": s.store.KnownCourts(),
	})
}

func (s *Server) connectionStatus() string {
	if s.socket == nil {
		return services.ConnStatusDisconnected
	}
	return s.socket.Status()
}

// handleIndex 端点索引
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Livescore Socket Listener",
		"version": "1.0.0",
		"status":  s.connectionStatus(),
		"endpoints": map[string]string{
			"/listpertandingan": "Get all match data from all courts",
			"/status":           "Get connection status and configuration",
			"/events":           "Get event history (use ?limit=N for pagination)",
			"/lapangan?id=N":    "Get data for specific court",
			"/debug?id=N":       "Debug internal data structure for specific court",
			"/vmix?id=N":        "Get match data (nested structure)",
			"/vmix-flat?id=N":   "Get vMix-friendly flat JSON data",
			"/vmix-xml?id=N":    "Get vMix-friendly XML data",
			"/btp?uid=X":        "Derive BTP submission from stored match record",
			"/clear":            "Clear all stored data",
		},
		"livescoreHost": s.config.LivescoreHost,
		"joinedRooms":   s.rooms.JoinedRooms(),
	})
}

// handleList 全部场地的原始聚合数据
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	data := s.store.All()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"timestamp":        services.WIBTimestamp(),
		"connectionStatus": s.connectionStatus(),
		"joinedRooms":      s.rooms.JoinedRooms(),
		"totalCourts":      len(data),
		"data":             data,
	})
}

// handleStatus 连接状态与配置
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"timestamp":        services.WIBTimestamp(),
		"livescoreHost":    s.config.LivescoreHost,
		"connectionStatus": s.connectionStatus(),
		"joinedRooms":      s.rooms.JoinedRooms(),
		"courtList":        s.registry.Courts(),
		"totalEvents":      s.history.Len(),
		"uptime":           time.Since(s.startedAt).Seconds(),
	})
}

// handleEvents 事件历史,默认最近 100 条
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent := s.history.Recent(limit)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"timestamp":   services.WIBTimestamp(),
		"totalEvents": s.history.Len(),
		"showing":     len(recent),
		"events":      recent,
	})
}

// handleLapangan 单块场地的完整数据
func (s *Server) handleLapangan(w http.ResponseWriter, r *http.Request) {
	lap := r.URL.Query().Get("id")
	st, err := s.store.Get(lap)
	if lap == "" || errors.Is(err, services.ErrCourtNotFound) {
		s.notFoundCourt(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": services.WIBTimestamp(),
		"lapangan":  lap,
		"data":      st,
	})
}

// handleDebug 调试投影
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	lap := r.URL.Query().Get("id")
	st, err := s.store.Get(lap)
	if lap == "" || errors.Is(err, services.ErrCourtNotFound) {
		s.notFoundCourt(w)
		return
	}

	view := services.BuildDebugView(lap, st, s.history)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"timestamp":        services.WIBTimestamp(),
		"lapangan":         lap,
		"debug_info":       view.DebugInfo,
		"matchInfo":        view.MatchInfo,
		"currentScore":     view.CurrentScore,
		"finalScore":       view.FinalScore,
		"playData_preview": view.PlayDataPreview,
		"recent_events":    view.RecentEvents,
	})
}

// handleVmix 嵌套结构,数组包装 (兼容旧消费方)
func (s *Server) handleVmix(w http.ResponseWriter, r *http.Request) {
	lap := r.URL.Query().Get("id")
	st, err := s.store.Get(lap)
	if lap == "" || errors.Is(err, services.ErrCourtNotFound) {
		s.notFoundCourt(w)
		return
	}

	responseData := map[string]interface{}{
		"currentScore": st.CurrentScore,
		"playData":     st.PlayData,
		"status":       st.Status,
		"lastUpdate":   st.LastUpdate,
		"scoreHistory": st.ScoreHistory,
	}
	// matchInfo 字段平铺进响应,livematch/history 这类体积大的内部字段去掉
	for k, v := range st.MatchInfo {
		if k == "livematch" || k == "history" {
			continue
		}
		if _, taken := responseData[k]; !taken {
			responseData[k] = v
		}
	}

	s.writeJSON(w, http.StatusOK, []map[string]interface{}{{
		"success":   true,
		"timestamp": services.WIBTimestamp(),
		"lapangan":  lap,
		"data":      responseData,
	}})
}

// handleVmixFlat 单层 JSON,数组包装
func (s *Server) handleVmixFlat(w http.ResponseWriter, r *http.Request) {
	lap := r.URL.Query().Get("id")
	st, err := s.store.Get(lap)
	if lap == "" || errors.Is(err, services.ErrCourtNotFound) {
		s.notFoundCourt(w)
		return
	}

	flat := services.BuildFlatScoreboard(lap, st)
	s.writeJSON(w, http.StatusOK, []*services.FlatScoreboard{flat})
}

// handleVmixXML XML 数据源
func (s *Server) handleVmixXML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")

	lap := r.URL.Query().Get("id")
	st, err := s.store.Get(lap)
	if lap == "" || errors.Is(err, services.ErrCourtNotFound) {
		w.WriteHeader(http.StatusNotFound)
		type xmlError struct {
			XMLName   xml.Name `xml:"error"`
			Message   string   `xml:"message"`
			Available string   `xml:"available"`
		}
		known := ""
		for i, c := range s.store.KnownCourts() {
			if i > 0 {
				known += ","
			}
			known += c
		}
		out, _ := xml.MarshalIndent(xmlError{Message: "Court not found", Available: known}, "", "  ")
		w.Write([]byte(xml.Header))
		w.Write(out)
		return
	}

	board := services.BuildXMLScoreboard(lap, st)
	out, err := xml.MarshalIndent(board, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write([]byte(xml.Header))
	w.Write(out)
}

// handleBTP 取比赛记录并推导 BTP 推送格式
func (s *Server) handleBTP(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   "Match store not configured (DATABASE_URL missing)",
		})
		return
	}

	uid := r.URL.Query().Get("uid")
	if uid == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Missing uid parameter",
		})
		return
	}

	record, err := s.matches.FetchByUID(uid)
	if errors.Is(err, services.ErrMatchNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"error":   "Match not found",
			"uid":     uid,
		})
		return
	}
	if err != nil {
		logger.Errorf("[BTP] ❌ Fetch failed for %s: %v", uid, err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": services.WIBTimestamp(),
		"data":      services.Derive(record),
	})
}

// handleClear 清空全部内存数据 (测试/换场次用)
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	s.history.Clear()

	logger.Printf("[HTTP] 🧹 All data cleared")
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "All data cleared",
	})
}
