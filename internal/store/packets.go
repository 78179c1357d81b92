// Package store holds the backend's in-memory state: the sync packets
// awaiting a doctor and the doctor-to-patient messages. Both sit on
// TTL-capable caches; packets never expire on their own, they are
// retired explicitly when a doctor marks them processed.
package store

import (
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/pkg/metrics"
)

type PacketStore struct {
	cache   *gocache.Cache
	metrics *metrics.Metrics
}

func NewPacketStore(m *metrics.Metrics) *PacketStore {
	return &PacketStore{
		cache:   gocache.New(gocache.NoExpiration, 10*time.Minute),
		metrics: m,
	}
}

// Add stores a packet under its id.
func (s *PacketStore) Add(p model.SyncPacket) {
	s.cache.Set(p.PacketID, p, gocache.NoExpiration)
	if s.metrics != nil {
		s.metrics.PacketsCreated.Inc()
		s.metrics.PacketQueueSize.Set(float64(s.cache.ItemCount()))
	}
}

// List returns packets newest first. A non-empty specialty filters by
// suggested specialty; a non-empty lastPacketID returns only packets
// created after that one, for incremental polling.
func (s *PacketStore) List(specialty, lastPacketID string) []model.SyncPacket {
	var since int64
	if lastPacketID != "" {
		if item, ok := s.cache.Get(lastPacketID); ok {
			since = item.(model.SyncPacket).Timestamp
		}
	}

	var packets []model.SyncPacket
	for _, item := range s.cache.Items() {
		p := item.Object.(model.SyncPacket)
		if specialty != "" && p.SuggestedSpecialty != specialty {
			continue
		}
		if since > 0 && p.Timestamp <= since {
			continue
		}
		packets = append(packets, p)
	}
	sort.Slice(packets, func(i, j int) bool {
		if packets[i].Timestamp != packets[j].Timestamp {
			return packets[i].Timestamp > packets[j].Timestamp
		}
		return packets[i].PacketID > packets[j].PacketID
	})
	return packets
}

// MarkProcessed deletes a packet. Processing a packet that is already
// gone reports ok: doctors on slow links retry, the retry must not
// error.
func (s *PacketStore) MarkProcessed(packetID string) bool {
	_, existed := s.cache.Get(packetID)
	s.cache.Delete(packetID)
	if s.metrics != nil {
		if existed {
			s.metrics.PacketsProcessed.Inc()
		}
		s.metrics.PacketQueueSize.Set(float64(s.cache.ItemCount()))
	}
	return existed
}

// Count returns the number of unprocessed packets.
func (s *PacketStore) Count() int {
	return s.cache.ItemCount()
}
