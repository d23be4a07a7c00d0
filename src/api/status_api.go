// Package api exposes read-only HTTP endpoints over the on-chain campaign
// and verification state.
package api

import (
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/bonsol-collective/proof-of-post/src/config"
	"github.com/bonsol-collective/proof-of-post/src/external"
	"github.com/bonsol-collective/proof-of-post/src/pda"
)

type Server struct {
	cfg    *config.ClientConfig
	client *external.SolanaClient
}

func NewServer(cfg *config.ClientConfig, client *external.SolanaClient) *Server {
	return &Server{cfg: cfg, client: client}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/config", s.readConfig)
	r.GET("/verification", s.verificationStatus)
	return r
}

func (s *Server) readConfig(c *gin.Context) {
	creatorStr := c.Query("creator")
	seed := c.Query("seed")

	if creatorStr == "" || seed == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: creator or seed param is empty",
		})
		return
	}

	creator, err := solana.PublicKeyFromBase58(creatorStr)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Could not parse creator pubkey: " + err.Error(),
		})
		return
	}

	cfg, err := s.client.ReadConfig(c.Request.Context(), creator, seed)
	if err != nil {
		if errors.Is(err, external.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (s *Server) verificationStatus(c *gin.Context) {
	verifierStr := c.Query("verifier")
	creatorStr := c.Query("creator")
	seed := c.Query("seed")

	if verifierStr == "" || creatorStr == "" || seed == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: verifier, creator, or seed param is empty",
		})
		return
	}

	verifier, err := solana.PublicKeyFromBase58(verifierStr)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Could not parse verifier pubkey: " + err.Error(),
		})
		return
	}

	creator, err := solana.PublicKeyFromBase58(creatorStr)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Could not parse creator pubkey: " + err.Error(),
		})
		return
	}

	campaign, err := pda.ConfigAddress(s.cfg.Keys.ProgramID, creator, seed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status, err := s.client.VerificationStatusFor(c.Request.Context(), verifier, campaign.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign": campaign.Address.String(),
		"status":   status,
	})
}
