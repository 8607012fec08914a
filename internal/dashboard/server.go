// Package dashboard exposes the shop's ledgers over an authenticated JSON
// API. It runs in the same process as the bot and shares its store, so every
// mutation goes through the same per-document locks the bot uses.
package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"shopbot/internal/config"
	"shopbot/internal/shop"
	"shopbot/internal/store"
)

type Server struct {
	cfg     config.DashboardConfig
	store   *store.Store
	service *shop.Service
	router  *gin.Engine
}

func NewServer(cfg config.DashboardConfig, st *store.Store, service *shop.Service) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		service: service,
		router:  gin.Default(),
	}

	s.router.Use(cors.Default())

	s.router.GET("/health", s.handleHealth)
	s.router.POST("/login", s.handleLogin)

	api := s.router.Group("/api", s.requireAuth)
	{
		api.GET("/orders", s.handleListOrders)
		api.POST("/orders/:id/deliver", s.handleDeliverOrder)
		api.POST("/orders/:id/move_to_delivery", s.handleMoveToDelivery)
		api.DELETE("/orders/:id", s.handleDeleteOrder)

		api.GET("/products", s.handleListProducts)
		api.POST("/products", s.handleAddProduct)
		api.PUT("/products/:name", s.handleUpdateProduct)
		api.DELETE("/products/:name", s.handleDeleteProduct)

		api.GET("/payments", s.handleListPayments)
		api.GET("/customers", s.handleListCustomers)
	}

	return s
}

// Handler exposes the router for http.Server and httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	return s.router.Run(s.cfg.Addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	token, err := s.generateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) handleListOrders(c *gin.Context) {
	doc, err := s.store.ListOrders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeliverOrder(c *gin.Context) {
	order, err := s.store.MarkDelivered(c.Param("id"))
	if errors.Is(err, store.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleMoveToDelivery(c *gin.Context) {
	order, err := s.store.MoveToDelivery(c.Param("id"))
	if errors.Is(err, store.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(c *gin.Context) {
	id := c.Param("id")

	// Pending orders go through the service so an active payment poll is
	// cancelled along with the order.
	removed, err := s.service.DeletePendingOrder(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		removed, err = s.store.DeleteOrder(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleListProducts(c *gin.Context) {
	products, err := s.store.ListProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

type productRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
}

func (s *Server) handleAddProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.Price.IsNegative() || req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price and stock must be non-negative"})
		return
	}

	product, err := s.store.AddProduct(req.Name, req.Price, req.Description, req.Stock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{req.Name: product})
}

func (s *Server) handleUpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price.IsNegative() || req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price and stock must be non-negative"})
		return
	}

	name := c.Param("name")
	if err := s.store.SetPrice(name, req.Price); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetStock(name, req.Stock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	product, err := s.store.GetProduct(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{name: product})
}

func (s *Server) handleDeleteProduct(c *gin.Context) {
	name := c.Param("name")
	removed, err := s.store.RemoveProduct(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

func (s *Server) handleListPayments(c *gin.Context) {
	payments, err := s.store.ListPayments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (s *Server) handleListCustomers(c *gin.Context) {
	customers, err := s.store.ListCustomers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customers)
}
