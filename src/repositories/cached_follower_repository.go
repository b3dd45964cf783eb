package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"followerspoc/src/domain"
	"followerspoc/src/domain/entities"
	"followerspoc/src/infra/redis"
)

// CachedFollowerRepository decora o FollowerRepository com cache redis
// nos agregados caros (counts e listas resolvidas de entidades). Toda
// escrita passa direto e invalida os registries das duas pontas do par.
// A fonte de verdade continua sendo o postgres.
type CachedFollowerRepository struct {
	followerRepository *FollowerRepository
	redisClient        *redis.RedisClient
}

func NewCachedFollowerRepository(
	followerRepository *FollowerRepository,
	redisClient *redis.RedisClient,
) *CachedFollowerRepository {
	return &CachedFollowerRepository{
		followerRepository: followerRepository,
		redisClient:        redisClient,
	}
}

// ############################################################
// ############ LEITURAS PONTUAIS (sem cache) #################
// ############################################################

// Lookups de par e filtros pontuais batem direto no banco: são baratos
// (index no par) e o engine depende deles para decidir transições.

func (r *CachedFollowerRepository) FindByPair(ctx context.Context, sender, recipient entities.Ref) (*entities.Follower, error) {
	return r.followerRepository.FindByPair(ctx, sender, recipient)
}

func (r *CachedFollowerRepository) Find(ctx context.Context, filter domain.FollowerFilter) ([]entities.Follower, error) {
	return r.followerRepository.Find(ctx, filter)
}

func (r *CachedFollowerRepository) Exists(ctx context.Context, filter domain.FollowerFilter) (bool, error) {
	return r.followerRepository.Exists(ctx, filter)
}

// ############################################################
// ############### AGREGADOS (com cache) ######################
// ############################################################

func (r *CachedFollowerRepository) Count(ctx context.Context, filter domain.FollowerFilter) (int64, error) {
	cacheKey := r.countCacheKey(filter)

	if cached, found, err := r.redisClient.GetKey(ctx, cacheKey); found && err == nil {
		var count int64
		if err := json.Unmarshal([]byte(cached), &count); err == nil {
			return count, nil
		}
	} else if err != nil {
		// Erro de cache não derruba a leitura, só loga e segue pro banco
		log.Printf("CachedFollowerRepository.Count cache error for key %s: %v", cacheKey, err)
	}

	count, err := r.followerRepository.Count(ctx, filter)
	if err != nil {
		return 0, err
	}

	go r.setInCache(cacheKey, count, registryKeysForFilter(filter))

	return count, nil
}

func (r *CachedFollowerRepository) ListRelatedEntities(
	ctx context.Context,
	ref entities.Ref,
	side domain.RelationSide,
	status entities.FollowStatus,
	page domain.PageRequest,
) (*domain.EntityPage, error) {
	cacheKey := r.listCacheKey(ref, side, status, page)

	if cached, found, err := r.redisClient.GetKey(ctx, cacheKey); found && err == nil {
		var result domain.EntityPage
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	} else if err != nil {
		log.Printf("CachedFollowerRepository.ListRelatedEntities cache error for key %s: %v", cacheKey, err)
	}

	result, err := r.followerRepository.ListRelatedEntities(ctx, ref, side, status, page)
	if err != nil {
		return nil, err
	}

	go r.setInCache(cacheKey, result, []string{registryKeyForRef(ref)})

	return result, nil
}

// ############################################################
// ############ ESCRITAS (pass-through + invalidação) #########
// ############################################################

func (r *CachedFollowerRepository) Create(ctx context.Context, sender, recipient entities.Ref, status entities.FollowStatus) (*entities.Follower, error) {
	follower, err := r.followerRepository.Create(ctx, sender, recipient, status)
	if err != nil {
		return nil, err
	}

	r.invalidatePair(sender, recipient)
	return follower, nil
}

func (r *CachedFollowerRepository) UpdateStatusByPair(ctx context.Context, sender, recipient entities.Ref, status entities.FollowStatus) (int64, error) {
	affected, err := r.followerRepository.UpdateStatusByPair(ctx, sender, recipient, status)
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		r.invalidatePair(sender, recipient)
	}
	return affected, nil
}

func (r *CachedFollowerRepository) DeleteByPair(ctx context.Context, sender, recipient entities.Ref) (int64, error) {
	deleted, err := r.followerRepository.DeleteByPair(ctx, sender, recipient)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		r.invalidatePair(sender, recipient)
	}
	return deleted, nil
}

// ############################################################
// ######################## internos ##########################
// ############################################################

func (r *CachedFollowerRepository) countCacheKey(filter domain.FollowerFilter) string {
	keyData := fmt.Sprintf("count:%v:%v:%v", filter.Sender, filter.Recipient, filter.Status)
	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("followers:count:%x", hash)
}

func (r *CachedFollowerRepository) listCacheKey(ref entities.Ref, side domain.RelationSide, status entities.FollowStatus, page domain.PageRequest) string {
	keyData := fmt.Sprintf("list:%s:%s:side:%d:status:%d:page:%d:%d",
		ref.Type, ref.ID, side, status, page.Page, page.PerPage)
	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("followers:list:%x", hash)
}

func registryKeyForRef(ref entities.Ref) string {
	return fmt.Sprintf("registry:follower:%s:%s", ref.Type, ref.ID)
}

func registryKeysForFilter(filter domain.FollowerFilter) []string {
	var keys []string
	if filter.Sender != nil {
		keys = append(keys, registryKeyForRef(*filter.Sender))
	}
	if filter.Recipient != nil {
		keys = append(keys, registryKeyForRef(*filter.Recipient))
	}
	return keys
}

func (r *CachedFollowerRepository) setInCache(cacheKey string, value interface{}, registryKeys []string) {
	// Timeout próprio: a goroutine sobrevive ao request que a disparou
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dataJSON, err := json.Marshal(value)
	if err != nil {
		log.Printf("CachedFollowerRepository failed to marshal cache data for key %s: %v", cacheKey, err)
		return
	}

	if err := r.redisClient.SetWithRegistry(ctx, cacheKey, string(dataJSON), registryKeys); err != nil {
		log.Printf("CachedFollowerRepository failed to set cache for key %s: %v", cacheKey, err)
	}
}

// invalidatePair derruba, em background, todo cache registrado para
// qualquer uma das pontas da relação que acabou de mudar.
func (r *CachedFollowerRepository) invalidatePair(sender, recipient entities.Ref) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := r.InvalidateByRefs(ctx, []entities.Ref{sender, recipient}); err != nil {
			log.Printf("CachedFollowerRepository failed to invalidate cache: %v", err)
		}
	}()
}

func (r *CachedFollowerRepository) InvalidateByRefs(ctx context.Context, refs []entities.Ref) error {
	if len(refs) == 0 {
		return nil
	}

	registryKeys := make([]string, len(refs))
	for i, ref := range refs {
		registryKeys[i] = registryKeyForRef(ref)
	}

	registryResults, err := r.redisClient.GetMultipleSetMembers(ctx, registryKeys)
	if err != nil {
		return fmt.Errorf("failed to get registry data: %w", err)
	}

	allKeysToDelete := make(map[string]bool)
	for registryKey, relatedKeys := range registryResults {
		allKeysToDelete[registryKey] = true
		for _, relatedKey := range relatedKeys {
			allKeysToDelete[relatedKey] = true
		}
	}

	keysToDelete := make([]string, 0, len(allKeysToDelete))
	for key := range allKeysToDelete {
		keysToDelete = append(keysToDelete, key)
	}

	if len(keysToDelete) > 0 {
		return r.redisClient.InvalidateKeys(ctx, keysToDelete)
	}

	return nil
}
