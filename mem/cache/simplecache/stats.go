package simplecache

// Stats counts what happened to the requests served by a cache.
type Stats struct {
	ReadHit    uint64 `json:"read_hit"`
	ReadMiss   uint64 `json:"read_miss"`
	WriteHit   uint64 `json:"write_hit"`
	WriteMiss  uint64 `json:"write_miss"`
	Evictions  uint64 `json:"evictions"`
	WriteBacks uint64 `json:"write_backs"`
	Forwards   uint64 `json:"forwards"`
}

// HitRate returns the fraction of requests that hit.
func (s Stats) HitRate() float64 {
	hits := s.ReadHit + s.WriteHit
	total := hits + s.ReadMiss + s.WriteMiss

	if total == 0 {
		return 0
	}

	return float64(hits) / float64(total)
}

// State is a snapshot of the registers of a cache.
type State struct {
	InflightReq       string `json:"inflight_req"`
	InflightRsp       string `json:"inflight_rsp"`
	MSHR              string `json:"mshr"`
	MSHRReq           string `json:"mshr_req"`
	Evict             string `json:"evict"`
	PendingWriteBacks int    `json:"pending_write_backs"`
	UpstreamPending   string `json:"upstream_pending"`
	AllocStall        string `json:"alloc_stall"`
	MissWaiting       bool   `json:"miss_waiting"`
	UpperRspCredit    uint64 `json:"upper_rsp_credit"`
	LowerReqCredit    uint64 `json:"lower_req_credit"`
}
