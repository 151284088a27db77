package main

//go:generate swag init -g cmd/bettracker/main.go -o docs

// @title           Bet Tracker API
// @version         0.1.0
// @description     Ticket bookkeeping, statistics, AI analysis and ticket OCR.
// @host            localhost:8000
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
