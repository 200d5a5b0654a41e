package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/wrathforge/internal/services/mcp/domain"
)

type registrationModule struct {
	name     string
	register func(*mcp.Server, domain.Engine) error
}

const (
	characterToolsModuleName = "character-tools"
	propertyToolsModuleName  = "property-tools"
	diceToolsModuleName      = "dice-tools"
	catalogToolsModuleName   = "catalog-tools"
	resourcesModuleName      = "resources"
)

func registrationModules() []registrationModule {
	return []registrationModule{
		{name: characterToolsModuleName, register: registerCharacterTools},
		{name: propertyToolsModuleName, register: registerPropertyTools},
		{name: diceToolsModuleName, register: registerDiceTools},
		{name: catalogToolsModuleName, register: registerCatalogTools},
		{name: resourcesModuleName, register: registerResources},
	}
}

func registerCharacterTools(server *mcp.Server, engine domain.Engine) error {
	return firstError(
		addTool(server, domain.CharacterCreateTool(), domain.CharacterCreateHandler(engine)),
		addTool(server, domain.CharacterGetTool(), domain.CharacterGetHandler(engine)),
		addTool(server, domain.CharacterListTool(), domain.CharacterListHandler(engine)),
		addTool(server, domain.CharacterDeleteTool(), domain.CharacterDeleteHandler(engine)),
		addTool(server, domain.CharacterComputeTool(), domain.CharacterComputeHandler(engine)),
	)
}

func registerPropertyTools(server *mcp.Server, engine domain.Engine) error {
	return firstError(
		addTool(server, domain.PropertyAddTool(), domain.PropertyAddHandler(engine)),
		addTool(server, domain.PropertyRemoveTool(), domain.PropertyRemoveHandler(engine)),
		addTool(server, domain.PropertySetEnabledTool(), domain.PropertySetEnabledHandler(engine)),
	)
}

func registerDiceTools(server *mcp.Server, engine domain.Engine) error {
	return firstError(
		addTool(server, domain.TestPerformTool(), domain.TestPerformHandler(engine)),
		addTool(server, domain.TestOpposedTool(), domain.TestOpposedHandler(engine)),
		addTool(server, domain.TestProbabilityTool(), domain.TestProbabilityHandler(engine)),
		addTool(server, domain.AbilityApplyTool(), domain.AbilityApplyHandler(engine)),
	)
}

func registerCatalogTools(server *mcp.Server, engine domain.Engine) error {
	return firstError(
		addTool(server, domain.CatalogListTool(), domain.CatalogListHandler(engine)),
		addTool(server, domain.RollLogListTool(), domain.RollLogListHandler(engine)),
	)
}

func registerResources(server *mcp.Server, engine domain.Engine) error {
	server.AddResourceTemplate(domain.CharacterResourceTemplate(), domain.CharacterResourceHandler(engine))
	server.AddResourceTemplate(domain.CatalogResourceTemplate(), domain.CatalogResourceHandler(engine))
	return nil
}

// addTool registers a typed tool, turning the SDK's schema inference panic
// into an error.
func addTool[I, O any](server *mcp.Server, tool *mcp.Tool, handler mcp.ToolHandlerFor[I, O]) (err error) {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("add tool %s: %v", tool.Name, r)
		}
	}()
	mcp.AddTool(server, tool, handler)
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
