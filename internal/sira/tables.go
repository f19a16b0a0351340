package sira

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// SeverityRule pairs a severity level with the patterns that trigger it.
// Rules are evaluated in slice order; the first match wins.
type SeverityRule struct {
	Level    Severity `yaml:"level"`
	Patterns []string `yaml:"patterns"`
}

// SectorRule pairs an industry sector with the patterns that claim it.
// Rules are evaluated in slice order; the first match wins.
type SectorRule struct {
	Sector   string   `yaml:"sector"`
	Patterns []string `yaml:"patterns"`
}

// Tables is the full, injectable signal configuration for classification.
// The zero value is unusable; start from Default and overlay operator
// overrides with Overlay.
type Tables struct {
	Layers   map[string][]string `yaml:"layers"`
	Metrics  map[string][]string `yaml:"metrics"`
	Severity []SeverityRule      `yaml:"severity"`
	Sectors  []SectorRule        `yaml:"sectors"`
}

// Default returns the built-in signal tables.
func Default() Tables {
	return Tables{
		Layers: map[string][]string{
			"L1": {
				`energy\s+consumption`, `power\s+grid`, `data\s+cent(er|re)\s+(power|energy|outage)`,
				`gpu\s+shortage`, `compute\s+cost`, `carbon\s+footprint\s+ai`,
				`electricity\s+demand\s+ai`, `cooling\s+(fail|cost)`,
			},
			"L2": {
				`cloud\s+outage`, `aws\s+(outage|down)`, `azure\s+(outage|down)`,
				`gcp\s+(outage|down)`, `gpu\s+supply`, `chip\s+shortage`,
				`tsmc`, `nvidia\s+(shortage|supply|dominan)`, `infrastructure\s+fail`,
				`server\s+(crash|outage|fail)`, `api\s+(outage|down)`,
			},
			"L3": {
				`transformer\s+(limit|plateau|bottleneck)`, `scaling\s+law\s+(plateau|limit|diminish)`,
				`architecture\s+(flaw|limit)`, `model\s+collapse`,
				`training\s+on\s+(ai|synthetic)\s+data`, `paradigm\s+(shift|lock)`,
			},
			"L4": {
				`hallucin`, `confabul`, `fabricat(ed|ing)\s+(information|citation|reference|fact)`,
				`bias(ed)?\s+(output|model|algorithm|training\s+data)`,
				`incorrect\s+(information|answer|response|advice)`,
				`false\s+(information|claim|answer)`, `misinformation`,
				`wrong\s+(answer|information|advice)`, `inaccura(te|cy)`,
				`ai\s+(error|mistake|blunder|gaffe)`, `deepfake`,
				`alignment\s+(fail|problem)`, `jailbreak`,
			},
			"L5": {
				`data\s+(leak|breach|expos).*\b(ai|chatbot|llm|gpt|claude|gemini)\b`,
				`(ai|chatbot|llm|gpt).*data\s+(leak|breach|expos)`,
				`prompt\s+injection`, `api\s+deprecat`, `vendor\s+lock`,
				`chatbot\s+(fail|error|wrong|mislead|sued|lawsuit)`,
				`ai\s+tool\s+(fail|error|bug|crash)`, `shadow\s+ai`,
				`(copyright|ip)\s+(infring|violat|lawsuit).*ai`,
			},
			"L6": {
				`autonom(ous|y)\s+(vehicle|car|driv|crash|accident)`,
				`self.driving\s+(crash|accident|fail|recall)`,
				`ai\s+(medical|healthcare|diagnos|treatment)\s*(error|fail|wrong|harm|death)`,
				`algorithm(ic)?\s+(deny|denial|reject|discriminat|bias)`,
				`ai\s+(hiring|recruit|hr)\s*(bias|discriminat|lawsuit|fail)`,
				`ai\s+weapon`, `drone\s+(strike|attack|fail).*ai`,
				`robotic\s+(surgery|procedure)\s*(fail|error|harm)`,
				`cascading\s+fail`, `liability\s+gap`,
			},
			"L7": {
				`(ai|chatbot)\s*(dependency|addict|attachment|relian)`,
				`deskill`, `cognitive\s+(atrophy|decline|offload|dependency)`,
				`(replac|eliminat|lay\s*off|fire|cut).*\b(worker|employee|staff|job|human)\b.*\bai\b`,
				`\bai\b.*(replac|eliminat|lay\s*off|fire|cut).*\b(worker|employee|staff|job|human)\b`,
				`(mental\s+health|suicide|self.harm).*\b(ai|chatbot)\b`,
				`\b(ai|chatbot)\b.*(mental\s+health|suicide|self.harm)`,
				`emotional\s*(support|companion|relationship).*ai`,
				`ai\s+companion`, `trust\s+(miscalibr|erosion|crisis).*ai`,
				`human\s+oversight\s*(fail|lack|absent)`,
				`ai\s+replace.*human\s+judgment`,
				`over.?relian(ce)?.*\bai\b`,
			},
		},
		Metrics: map[string][]string{
			"MY":  {`roi\b`, `cost\s+saving`, `productivity`, `efficien`, `value`, `spend`},
			"CRR": {`deskill`, `without\s+ai`, `human\s+(capability|skill|competenc)`, `cognitive\s+reserve`},
			"BAI": {`dependen`, `outage\s+impact`, `can.?t\s+function\s+without`, `single\s+point\s+of\s+fail`},
			"HR":  {`hallucin`, `unverified`, `fabricat`, `incorrect`, `inaccura`, `wrong\s+answer`},
			"HHI": {`vendor\s+(lock|concentrat|single)`, `single\s+provider`, `(aws|azure|openai|google)\s+only`},
			"MG":  {`systemic`, `multiple\s+(fail|risk|layer)`, `compound`, `cascad`},
		},
		Severity: []SeverityRule{
			{Level: SeverityCritical, Patterns: []string{
				`death`, `killed`, `fatal`, `suicide`, `class.?action`, `billion`,
			}},
			{Level: SeverityHigh, Patterns: []string{
				`lawsuit`, `sued`, `recall`, `banned`, `fired`, `million\s+dollar`, `million\s+loss`,
			}},
			{Level: SeverityMedium, Patterns: []string{
				`error`, `mistake`, `wrong`, `inaccura`, `mislead`, `fail`,
			}},
		},
		Sectors: []SectorRule{
			{Sector: "Healthcare", Patterns: []string{`health`, `medical`, `hospital`, `patient`, `pharma`, `drug`, `medicare`, `diagnos`}},
			{Sector: "Finance", Patterns: []string{`bank`, `financ`, `insur`, `trading`, `invest`, `fintech`, `payment`, `loan`}},
			{Sector: "Automotive", Patterns: []string{`self.driv`, `autonom.*vehicle`, `tesla`, `waymo`, `cruise`, `car\s+crash`}},
			{Sector: "Legal", Patterns: []string{`lawyer`, `legal`, `law\s+firm`, `court`, `judge`, `attorney`}},
			{Sector: "Education", Patterns: []string{`school`, `student`, `university`, `educat`, `academic`, `cheating`}},
			{Sector: "Retail", Patterns: []string{`retail`, `e.?commerce`, `shopping`, `consumer`, `customer\s+service`}},
			{Sector: "Media", Patterns: []string{`news`, `journal`, `publish`, `media`, `content\s+moderat`}},
			{Sector: "Tech", Patterns: []string{`software`, `saas`, `cloud`, `platform`, `developer`, `startup`}},
			{Sector: "Government", Patterns: []string{`government`, `public\s+sector`, `polic`, `military`, `defense`, `regulat`}},
			{Sector: "HR/Recruitment", Patterns: []string{`hiring`, `recruit`, `resume`, `hr\b`, `workforce`, `employ`}},
		},
	}
}

// Overlay returns a copy of t with any non-empty section of o replacing the
// corresponding section of t. Sections are replaced whole, not merged entry
// by entry, so an override file fully owns every section it declares.
func (t Tables) Overlay(o Tables) Tables {
	out := t
	if len(o.Layers) > 0 {
		out.Layers = o.Layers
	}
	if len(o.Metrics) > 0 {
		out.Metrics = o.Metrics
	}
	if len(o.Severity) > 0 {
		out.Severity = o.Severity
	}
	if len(o.Sectors) > 0 {
		out.Sectors = o.Sectors
	}
	return out
}

// FromYAML parses an operator override file and overlays it on the default
// tables. An empty document yields the defaults unchanged.
func FromYAML(data []byte) (Tables, error) {
	var o Tables
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Tables{}, fmt.Errorf("parse signal tables: %w", err)
	}
	return Default().Overlay(o), nil
}

// Compiled holds the pattern tables compiled to regexps, ready for matching.
type Compiled struct {
	Layers   map[string][]*regexp.Regexp
	Metrics  map[string][]*regexp.Regexp
	Severity []CompiledSeverityRule
	Sectors  []CompiledSectorRule
}

type CompiledSeverityRule struct {
	Level    Severity
	Patterns []*regexp.Regexp
}

type CompiledSectorRule struct {
	Sector   string
	Patterns []*regexp.Regexp
}

// Compile validates and compiles every pattern in the tables. Any invalid
// pattern or unknown layer/metric/severity code fails the whole compile, so
// a bad override file is rejected at startup rather than mid-scan.
func (t Tables) Compile() (*Compiled, error) {
	c := &Compiled{
		Layers:  make(map[string][]*regexp.Regexp, len(t.Layers)),
		Metrics: make(map[string][]*regexp.Regexp, len(t.Metrics)),
	}

	for layer, patterns := range t.Layers {
		if _, ok := LayerNames[layer]; !ok {
			return nil, fmt.Errorf("signal tables: unknown layer %q", layer)
		}
		res, err := compileAll("layer "+layer, patterns)
		if err != nil {
			return nil, err
		}
		c.Layers[layer] = res
	}

	for metric, patterns := range t.Metrics {
		if _, ok := MetricNames[metric]; !ok {
			return nil, fmt.Errorf("signal tables: unknown metric %q", metric)
		}
		res, err := compileAll("metric "+metric, patterns)
		if err != nil {
			return nil, err
		}
		c.Metrics[metric] = res
	}

	for _, rule := range t.Severity {
		if rule.Level.Rank() == 0 {
			return nil, fmt.Errorf("signal tables: unknown severity level %q", rule.Level)
		}
		res, err := compileAll("severity "+string(rule.Level), rule.Patterns)
		if err != nil {
			return nil, err
		}
		c.Severity = append(c.Severity, CompiledSeverityRule{Level: rule.Level, Patterns: res})
	}

	for _, rule := range t.Sectors {
		if rule.Sector == "" {
			return nil, fmt.Errorf("signal tables: sector rule with empty sector")
		}
		res, err := compileAll("sector "+rule.Sector, rule.Patterns)
		if err != nil {
			return nil, err
		}
		c.Sectors = append(c.Sectors, CompiledSectorRule{Sector: rule.Sector, Patterns: res})
	}

	return c, nil
}

func compileAll(where string, patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("signal tables: %s pattern %q: %w", where, p, err)
		}
		res = append(res, re)
	}
	return res, nil
}
