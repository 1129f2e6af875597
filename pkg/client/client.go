package client

import (
	"context"
	"time"

	"roomgrid/pkg/logger"
)

type Client struct {
	Mongo *MongoClient
	Redis *RedisClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, mongoConnTimeout)
}

func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int, dialTimeout time.Duration) {
	c.Redis = NewRedisClient(log, addr, password, db, dialTimeout)
}

// GracefulShutdown closes every connection that was opened.
func (c *Client) GracefulShutdown(log *logger.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if c.Mongo != nil {
		if err := c.Mongo.Client.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		} else {
			log.Info("Disconnected from MongoDB")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Client.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		} else {
			log.Info("Disconnected from Redis")
		}
	}
}
