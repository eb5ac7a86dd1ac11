package data

import (
	"fmt"
	"os"
	"time"

	"github.com/l1jgo/worldcore/internal/entity"
	"gopkg.in/yaml.v3"
)

// Implementation names accepted in the impl column.
const (
	ImplNPC       = "npc"
	ImplCombat    = "combat"
	ImplMob       = "mob"
	ImplEgg       = "egg"
	ImplTransport = "transport"
)

// ImplKind maps an impl name to the entity kind it builds.
func ImplKind(impl string) (entity.Kind, bool) {
	switch impl {
	case ImplNPC:
		return entity.KindSimpleNPC, true
	case ImplCombat:
		return entity.KindCombatNPC, true
	case ImplMob:
		return entity.KindMob, true
	case ImplEgg:
		return entity.KindEgg, true
	case ImplTransport:
		return entity.KindTransport, true
	}
	return entity.KindInvalid, false
}

// NpcTemplate holds static data for an NPC type loaded from YAML.
type NpcTemplate struct {
	NpcID        int32  `yaml:"npc_id"`
	Name         string `yaml:"name"`
	Impl         string `yaml:"impl"`
	TypeCode     int32  `yaml:"type_code"`
	Level        int32  `yaml:"level"`
	HP           int32  `yaml:"hp"` // 0 = entity.DefaultNPCHealth
	Barker       int32  `yaml:"barker"`
	RespawnDelay int    `yaml:"respawn_delay"` // seconds; mobs and eggs
	AI           string `yaml:"ai"`            // Lua function, combat kinds only
}

// MaxHP is the template's health with the default applied.
func (t *NpcTemplate) MaxHP() int32 {
	if t.HP <= 0 {
		return entity.DefaultNPCHealth
	}
	return t.HP
}

func (t *NpcTemplate) Respawn() time.Duration {
	return time.Duration(t.RespawnDelay) * time.Second
}

// SpawnEntry defines where and how many NPCs to spawn.
type SpawnEntry struct {
	NpcID    int32  `yaml:"npc_id"`
	Instance uint64 `yaml:"instance"`
	X        int32  `yaml:"x"`
	Y        int32  `yaml:"y"`
	Z        int32  `yaml:"z"`
	Angle    int32  `yaml:"angle"`
	Count    int    `yaml:"count"`
	RandomX  int32  `yaml:"randomx"`
	RandomY  int32  `yaml:"randomy"`
	Summoned bool   `yaml:"summoned"` // eggs only
}

type npcListFile struct {
	Npcs []NpcTemplate `yaml:"npcs"`
}

type spawnListFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// NpcTable holds all NPC templates indexed by NpcID.
type NpcTable struct {
	templates map[int32]*NpcTemplate
}

// LoadNpcTable loads NPC templates from a YAML file. Unknown impl names and
// duplicate ids are rejected.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc_list: %w", err)
	}
	return parseNpcTable(raw)
}

func parseNpcTable(raw []byte) (*NpcTable, error) {
	var f npcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc_list: %w", err)
	}
	t := &NpcTable{templates: make(map[int32]*NpcTemplate, len(f.Npcs))}
	for i := range f.Npcs {
		npc := &f.Npcs[i]
		if _, ok := ImplKind(npc.Impl); !ok {
			return nil, fmt.Errorf("npc %d: unknown impl %q", npc.NpcID, npc.Impl)
		}
		if _, dup := t.templates[npc.NpcID]; dup {
			return nil, fmt.Errorf("npc %d: duplicate id", npc.NpcID)
		}
		t.templates[npc.NpcID] = npc
	}
	return t, nil
}

// Get returns an NPC template by ID, or nil if not found.
func (t *NpcTable) Get(npcID int32) *NpcTemplate {
	return t.templates[npcID]
}

// Count returns the number of loaded templates.
func (t *NpcTable) Count() int {
	return len(t.templates)
}

// LoadSpawnList loads spawn entries from a YAML file.
func LoadSpawnList(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	return f.Spawns, nil
}
