package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talenttrek/internal/observability"
	"github.com/jonathan/talenttrek/internal/resume"
	"github.com/jonathan/talenttrek/internal/skills"
)

var (
	extractFile    string
	extractVerbose bool
)

var extractSkillsCmd = &cobra.Command{
	Use:   "extract-skills [text...]",
	Short: "Print the vocabulary skills found in a resume or text",
	Long:  "Extract vocabulary skills from a resume file (.pdf, .docx, .doc, .txt) or from the text given as arguments, and print them as JSON.",
	RunE:  runExtractSkills,
}

func init() {
	extractSkillsCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Resume file to parse")
	extractSkillsCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print a readable summary instead of JSON")
	rootCmd.AddCommand(extractSkillsCmd)
}

type extractOutput struct {
	Skills    []string `json:"skills"`
	WordCount int      `json:"wordCount"`
	Summary   string   `json:"summary,omitempty"`
}

func runExtractSkills(cmd *cobra.Command, args []string) error {
	if extractFile == "" && len(args) == 0 {
		return fmt.Errorf("either --file or text arguments must be provided")
	}
	if extractFile != "" && len(args) > 0 {
		return fmt.Errorf("--file and text arguments are mutually exclusive; provide only one")
	}

	parser := resume.NewParser(skills.NewExtractor(nil))

	var parsed *resume.Parsed
	source := "arguments"
	if extractFile != "" {
		source = filepath.Base(extractFile)
		data, err := os.ReadFile(extractFile)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if parsed, err = parser.Parse(filepath.Ext(extractFile), data); err != nil {
			return fmt.Errorf("failed to parse resume: %w", err)
		}
	} else {
		parsed = parser.ParseText(strings.Join(args, " "))
	}

	if extractVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintParsedResume(source, parsed)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(extractOutput{
		Skills:    parsed.Skills,
		WordCount: parsed.WordCount,
		Summary:   parsed.Summary,
	})
}
