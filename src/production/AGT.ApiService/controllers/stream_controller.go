package controllers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	realtime "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Realtime"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamController bridges websocket clients onto the realtime
// subscription manager. Each connection carries exactly one
// subscription; clients re-dial when the entity id changes.
type StreamController struct {
	manager        *realtime.Manager
	farmRepo       interfaces.FarmRepository
	sensorRepo     interfaces.SensorRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewStreamController creates a new stream controller
func NewStreamController(
	manager *realtime.Manager,
	farmRepo interfaces.FarmRepository,
	sensorRepo interfaces.SensorRepository,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *StreamController {
	return &StreamController{
		manager:        manager,
		farmRepo:       farmRepo,
		sensorRepo:     sensorRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the websocket routes with Gin
func (h *StreamController) RegisterRoutes(router *gin.Engine) {
	// Identify, not Authenticate: the subscription contract requires
	// anonymous subscribers to receive an empty snapshot plus an
	// auth-kind error over the socket, not an HTTP rejection.
	router.GET("/ws/farms/:farm_id/sensors", h.authMiddleware.Identify(), h.StreamFarmSensors)
	router.GET("/ws/sensors/:sensor_id/readings", h.authMiddleware.Identify(), h.StreamSensorReadings)
}

type streamEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

func (h *StreamController) StreamFarmSensors(c *gin.Context) {
	userID := middleware.UserID(c)
	farmID := c.Param("farm_id")

	if userID != "" {
		farm, err := h.farmRepo.Get(c.Request.Context(), farmID)
		if err != nil {
			respondError(c, err)
			return
		}
		if farm.OwnerID != userID {
			respondError(c, agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user"))
			return
		}
	}

	h.serve(c, func(send func(streamEnvelope)) realtime.CancelFunc {
		return h.manager.SubscribeFarmSensors(
			realtime.Principal{UserID: userID},
			farmID,
			func(views []agtmodels.SensorView) {
				send(streamEnvelope{Type: "sensors", Payload: views})
			},
			func(err error) {
				send(streamEnvelope{Type: "error", Error: err.Error(), Kind: agtmodels.KindOf(err).String()})
			},
		)
	})
}

func (h *StreamController) StreamSensorReadings(c *gin.Context) {
	userID := middleware.UserID(c)
	sensorID := c.Param("sensor_id")

	if userID != "" {
		sensor, err := h.sensorRepo.Get(c.Request.Context(), sensorID)
		if err != nil {
			respondError(c, err)
			return
		}
		farm, err := h.farmRepo.Get(c.Request.Context(), sensor.FarmID)
		if err != nil {
			respondError(c, err)
			return
		}
		if farm.OwnerID != userID {
			respondError(c, agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user"))
			return
		}
	}

	window := realtime.DefaultSeriesWindow
	h.serve(c, func(send func(streamEnvelope)) realtime.CancelFunc {
		return h.manager.SubscribeSensorSeries(
			realtime.Principal{UserID: userID},
			sensorID,
			window,
			func(points []agtmodels.ReadingPoint) {
				send(streamEnvelope{Type: "readings", Payload: points})
			},
			func(err error) {
				send(streamEnvelope{Type: "error", Error: err.Error(), Kind: agtmodels.KindOf(err).String()})
			},
		)
	})
}

// serve upgrades the connection, starts the subscription, and pumps
// envelopes until the client goes away. Writes are serialized with a
// mutex because data and error callbacks may interleave.
func (h *StreamController) serve(c *gin.Context, subscribe func(send func(streamEnvelope)) realtime.CancelFunc) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(env streamEnvelope) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(env); err != nil {
			h.logger.WithError(err).Debug("websocket write failed")
		}
	}

	cancel := subscribe(send)
	defer cancel()

	// Drain the read side; an error means the peer closed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
