package service

import (
	"context"
	"encoding/json"
	"time"

	"comanda/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const produtoCacheTTL = 10 * time.Minute

// ProdutoCache keeps product reads in Redis under produto:<id>. Every write to
// a product (catalog edit or stock movement) must call Invalidar after commit.
// A nil client turns the cache into a no-op.
type ProdutoCache struct {
	rdb *redis.Client
}

func NewProdutoCache(rdb *redis.Client) *ProdutoCache {
	return &ProdutoCache{rdb: rdb}
}

func produtoKey(id uuid.UUID) string { return "produto:" + id.String() }

func (c *ProdutoCache) Get(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, produtoKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("produto_id", id.String()).Msg("cache de produto indisponível")
		}
		return nil, false
	}
	var resp dto.ProdutoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *ProdutoCache) Set(ctx context.Context, resp *dto.ProdutoResponse) {
	if c == nil || c.rdb == nil || resp == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, "produto:"+resp.ID, raw, produtoCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("produto_id", resp.ID).Msg("falha ao gravar cache de produto")
	}
}

func (c *ProdutoCache) Invalidar(ctx context.Context, ids ...uuid.UUID) {
	if c == nil || c.rdb == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = produtoKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("falha ao invalidar cache de produto")
	}
}
