package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/server/response"
)

func (s *Server) handleGetRewardBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		balance, err := s.LedgerService.GetBalance(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "balance retrieved", http.StatusOK, gin.H{"balance": balance}, nil)
	}
}

func (s *Server) handleGetRewardTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		transactions, err := s.LedgerService.GetRewardTransactions(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "transactions retrieved", http.StatusOK, transactions, nil)
	}
}

func (s *Server) handleGetAvailableRewards() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		rewards, err := s.LedgerService.GetAvailableRewards(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "rewards retrieved", http.StatusOK, rewards, nil)
	}
}

func (s *Server) handleRedeemReward() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		rewardID, err := strconv.ParseUint(c.Param("rewardID"), 10, 32)
		if err != nil {
			response.JSON(c, "invalid reward id", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		if err := s.LedgerService.Redeem(userID, uint(rewardID)); err != nil {
			switch {
			case errors.Is(err, errs.ErrInsufficientPoints):
				response.JSON(c, "insufficient points", http.StatusUnprocessableEntity, nil, err)
			case errors.Is(err, errs.ErrInvalidReward):
				response.JSON(c, "invalid reward", http.StatusBadRequest, nil, err)
			default:
				response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			}
			return
		}
		response.JSON(c, "reward redeemed", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleGetLeaderboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.LedgerService.GetLeaderboard()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "leaderboard retrieved", http.StatusOK, rows, nil)
	}
}
